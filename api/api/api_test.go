/* api_test.go
 * Contains unit tests for the public API methods
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gamers-bot/api/external"
	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"
	"gamers-bot/api/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	player   = shared.User{UserID: "player", Username: "Player"}
	stranger = shared.User{UserID: "stranger", Username: "Stranger"}
	testNow  = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestAPI(t *testing.T) (*API, *MockBackend, *MockSessions) {
	t.Helper()
	backend := NewMockBackend()
	sessions := NewMockSessions(player.UserID)
	queries := query.NewClient(store.NewMemoryCache(), time.Minute, zerolog.Nop())
	queries.RetryBackoff = 0

	a, err := NewAPI(backend, queries, sessions, zerolog.Nop())
	require.NoError(t, err)
	a.Now = func() time.Time { return testNow }
	return a, backend, sessions
}

func scoreTableID(id int64) *int64 {
	return &id
}

// region NewAPI tests

func TestNewAPI_MissingCollaborators(t *testing.T) {
	queries := query.NewClient(nil, 0, zerolog.Nop())

	_, err := NewAPI(nil, queries, NewMockSessions(), zerolog.Nop())
	assert.Error(t, err)
	_, err = NewAPI(NewMockBackend(), nil, NewMockSessions(), zerolog.Nop())
	assert.Error(t, err)
	_, err = NewAPI(NewMockBackend(), queries, nil, zerolog.Nop())
	assert.Error(t, err)
}

// endregion

// region ContestView tests

func TestContestView_LoggedOut(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1, Title: "Cup"}

	view, err := a.ContestView(context.Background(), stranger, 1)

	require.NoError(t, err)
	assert.False(t, view.LoggedIn)
	assert.Equal(t, logic.PromptLogin, view.Action.Kind)
	assert.Equal(t, "/login", view.Action.RedirectPath)
	assert.Zero(t, backend.CallCount("GetMyApplication"))
}

func TestContestView_StatusDrivesAction(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.Applications[1] = shared.StatusAccepted

	view, err := a.ContestView(context.Background(), player, 1)

	require.NoError(t, err)
	assert.True(t, view.LoggedIn)
	assert.Equal(t, logic.ShowJoined, view.Action.Kind)
	assert.Equal(t, "already joined", view.Action.Label)
}

func TestContestView_ExpiredTokenIsLoggedOut(t *testing.T) {
	a, backend, sessions := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1}
	sessions.Credentials[player.UserID] = shared.Credentials{AccessToken: "a"}

	view, err := a.ContestView(context.Background(), player, 1)

	require.NoError(t, err)
	assert.False(t, view.LoggedIn)
}

func TestContestView_Errors(t *testing.T) {
	a, backend, sessions := newTestAPI(t)

	_, err := a.ContestView(context.Background(), player, 404)
	assert.True(t, external.IsNotFound(err))

	backend.Contests[1] = shared.Contest{ContestID: 1}
	sessions.GetError = errors.New("mongo down")
	_, err = a.ContestView(context.Background(), player, 1)
	assert.ErrorContains(t, err, "mongo down")
}

// endregion

// region application lifecycle tests

// The participant count is only ever read from a refetch after each confirmed mutation
func TestApplicationLifecycle_RefetchAfterEachTransition(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1, MaxTeamCount: 8}

	expect := func(status shared.ApplicationStatus, count int) {
		t.Helper()
		view, err := a.ContestView(ctx, player, 1)
		require.NoError(t, err)
		assert.Equal(t, status, view.Application.Status)
		assert.Equal(t, count, view.Contest.CurrentTeamCount)
	}

	expect(shared.StatusNone, 0)

	for round := 0; round < 2; round++ {
		_, err := a.OpenApplication(ctx, player, 1)
		require.NoError(t, err)
		require.NoError(t, a.Apply(ctx, player, 1))
		expect(shared.StatusPending, 1)

		require.NoError(t, a.CancelApplication(ctx, player, 1))
		expect(shared.StatusNone, 0)
	}

	_, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	require.NoError(t, a.Apply(ctx, player, 1))
	expect(shared.StatusPending, 1)

	// one initial read plus one per confirmed mutation
	assert.Equal(t, 6, backend.CallCount("GetContest"))
}

func TestApply_NotOptimistic(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.ApplyError = &external.APIError{Status: http.StatusConflict, Message: "contest is full"}

	_, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	err = a.Apply(ctx, player, 1)

	require.Error(t, err)
	assert.Equal(t, "contest is full", UserMessage(err, "fallback"))
	view, err := a.ContestView(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusNone, view.Application.Status)
	_, open := a.Application(player, 1)
	assert.False(t, open)
}

func TestApply_RequiresOpenSession(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1}

	err := a.Apply(context.Background(), player, 1)

	assert.True(t, errors.Is(err, ErrNoApplication))
	assert.Zero(t, backend.CallCount("Apply"))
}

func TestApply_GateRequiresCalculation(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1, GamePointTableID: scoreTableID(7)}
	backend.ScoreTables[7] = shared.ScoreTable{}
	backend.Points[1] = shared.PointCalculation{CurrentTierPatched: "Gold 3", FinalPoint: 12}

	session, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, logic.GateIdle, session.Gate.State())

	err = a.Apply(ctx, player, 1)
	assert.True(t, errors.Is(err, ErrGateClosed))
	assert.Zero(t, backend.CallCount("Apply"))

	snap, err := a.CalculatePoints(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, logic.GateSuccess, snap.State)
	assert.Equal(t, 12, snap.Result.FinalPoint)

	require.NoError(t, a.Apply(ctx, player, 1))
	assert.Equal(t, 1, backend.CallCount("Apply"))
}

func TestCalculatePoints_Failure(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1, GamePointTableID: scoreTableID(7)}
	backend.PointError = &external.APIError{Status: http.StatusBadRequest, Message: "link your riot account"}

	_, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	snap, err := a.CalculatePoints(ctx, player, 1)

	require.Error(t, err)
	assert.Equal(t, logic.GateFailure, snap.State)
	assert.Equal(t, "link your riot account", snap.Failure)
	assert.Equal(t, "/my", snap.Remediation)

	// A second click in the same session sends nothing
	_, err = a.CalculatePoints(ctx, player, 1)
	assert.True(t, errors.Is(err, logic.ErrGateBusy))
	assert.Equal(t, 1, backend.CallCount("GetContestPoint"))
}

func TestCloseApplication_DiscardsResult(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1, GamePointTableID: scoreTableID(7)}
	backend.ScoreTables[7] = shared.ScoreTable{}
	backend.Points[1] = shared.PointCalculation{FinalPoint: 12}

	_, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	_, err = a.CalculatePoints(ctx, player, 1)
	require.NoError(t, err)

	a.CloseApplication(player, 1)
	_, err = a.CalculatePoints(ctx, player, 1)
	assert.True(t, errors.Is(err, ErrNoApplication))

	session, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	snap := session.Gate.Snapshot()
	assert.Equal(t, logic.GateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.CanConfirm)
}

func TestOpenApplication_WrongStatus(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.Applications[1] = shared.StatusPending

	_, err := a.OpenApplication(context.Background(), player, 1)
	assert.True(t, errors.Is(err, ErrActionUnavailable))

	_, err = a.OpenApplication(context.Background(), stranger, 1)
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
}

func TestOpenApplication_RejectedCanReapply(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.Applications[1] = shared.StatusRejected

	_, err := a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	require.NoError(t, a.Apply(ctx, player, 1))

	view, err := a.ContestView(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusPending, view.Application.Status)
}

func TestDecideApplication(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.Operator[1] = []shared.Application{{UserID: 5, Status: shared.StatusPending}, {UserID: 6, Status: shared.StatusPending}}

	require.NoError(t, a.AcceptApplication(ctx, player, 1, 5))
	require.NoError(t, a.RejectApplication(ctx, player, 1, 6))

	apps, err := a.ListApplications(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusAccepted, apps[0].Status)
	assert.Equal(t, shared.StatusRejected, apps[1].Status)

	assert.True(t, external.IsNotFound(a.AcceptApplication(ctx, player, 1, 99)))
}

// endregion

// region invite tests

func TestInvitePage(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Teams[1] = &shared.Team{Members: []shared.TeamMember{{UserID: 2}}}
	for i := int64(1); i <= 12; i++ {
		backend.Members[1] = append(backend.Members[1], shared.Candidate{UserID: i, Username: "user"})
	}

	view, err := a.InvitePage(ctx, player, 1, 1)
	require.NoError(t, err)
	assert.Len(t, view.Rows, 10)
	assert.Equal(t, 2, view.TotalPages)
	assert.True(t, view.Rows[1].IsAlreadyMember)
	assert.False(t, view.Rows[0].IsAlreadyMember)

	view, err = a.InvitePage(ctx, player, 1, 2)
	require.NoError(t, err)
	assert.Len(t, view.Rows, 2)
}

func TestInvitePage_PastLastPageIsClamped(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	for i := int64(1); i <= 15; i++ {
		backend.Members[1] = append(backend.Members[1], shared.Candidate{UserID: i, Username: "user"})
	}

	view, err := a.InvitePage(context.Background(), player, 1, 9)

	require.NoError(t, err)
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, 2, view.TotalPages)
	assert.Len(t, view.Rows, 5)
	assert.Equal(t, 2, logic.NextPage(view.Page, view.TotalPages))
}

func TestListContests_PastLastPageIsClamped(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Contests[1] = shared.Contest{ContestID: 1}

	page, err := a.ListContests(context.Background(), player, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Data, 1)
}

func TestInvitePage_NoTeam(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.Members[1] = []shared.Candidate{{UserID: 1}}

	view, err := a.InvitePage(context.Background(), player, 1, 0)

	require.NoError(t, err)
	assert.False(t, view.Loading)
	assert.Equal(t, 1, view.Page)
	assert.True(t, view.Rows[0].Eligible)
}

func TestInvitePage_TeamRefetchFlipsFlag(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Members[1] = []shared.Candidate{{UserID: 1}, {UserID: 2}}

	view, err := a.InvitePage(ctx, player, 1, 1)
	require.NoError(t, err)
	assert.False(t, view.Rows[1].IsAlreadyMember)

	backend.Teams[1] = &shared.Team{Members: []shared.TeamMember{{UserID: 2}}}
	require.NoError(t, a.Queries.Invalidate(ctx, query.TeamKey(1, player.UserID)))

	view, err = a.InvitePage(ctx, player, 1, 1)
	require.NoError(t, err)
	assert.True(t, view.Rows[1].IsAlreadyMember)
	assert.Equal(t, 1, backend.CallCount("ListMembers"))
}

func TestInvitePage_RetriesListOnly(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	backend.ListMembersError = &external.APIError{Status: http.StatusBadGateway}

	_, err := a.InvitePage(context.Background(), player, 1, 1)

	require.Error(t, err)
	assert.Equal(t, query.ListRetry.Retry+1, backend.CallCount("ListMembers"))
	assert.Equal(t, 1, backend.CallCount("GetTeam"))
}

func TestInvite(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Teams[1] = &shared.Team{Members: []shared.TeamMember{{UserID: 2}}}

	require.NoError(t, a.Invite(ctx, player, 1, 3))
	assert.Equal(t, []int64{3}, backend.Invites[1])

	err := a.Invite(ctx, player, 1, 2)
	assert.True(t, errors.Is(err, ErrAlreadyMember))
	assert.Equal(t, 1, backend.CallCount("InviteMember"))

	backend.InviteError = &external.APIError{Status: http.StatusBadRequest}
	err = a.Invite(ctx, player, 1, 4)
	assert.Equal(t, "could not send invite", UserMessage(err, "could not send invite"))
}

// endregion

// region score table and contest tests

func TestCreateScoreTable_ValidationSendsNothing(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	form := logic.DefaultScoreTableForm()
	form.Values["gold_2"] = "abc"

	_, err := a.CreateScoreTable(context.Background(), player, form)

	var verr *logic.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["gold_2"])
	assert.Zero(t, backend.CallCount("CreateScoreTable"))
}

func TestCreateScoreTable_IDUsableForPoints(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()

	id, err := a.CreateScoreTable(ctx, player, logic.DefaultScoreTableForm())
	require.NoError(t, err)
	assert.Len(t, backend.ScoreTables[id], 25)

	backend.Contests[1] = shared.Contest{ContestID: 1, GamePointTableID: &id}
	backend.Points[1] = shared.PointCalculation{FinalPoint: 10}
	_, err = a.OpenApplication(ctx, player, 1)
	require.NoError(t, err)
	snap, err := a.CalculatePoints(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Result.FinalPoint)
}

func TestCreateContest_SequencesScoreTable(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	step := &ScoreTableStep{API: a, User: player, Form: logic.DefaultScoreTableForm()}

	contest, err := a.CreateContest(ctx, player, shared.CreateContestRequest{Title: "Cup", ContestType: "TOURNAMENT"}, step)

	require.NoError(t, err)
	require.NotNil(t, contest.GamePointTableID)
	require.Len(t, backend.Created, 1)
	assert.Equal(t, *contest.GamePointTableID, *backend.Created[0].GamePointTableID)
}

func TestCreateContest_FailedStepSendsNoContest(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	step := &ScoreTableStep{API: a, User: player, Form: logic.ScoreTableForm{}}

	_, err := a.CreateContest(context.Background(), player, shared.CreateContestRequest{Title: "Cup"}, step)

	var verr *logic.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Zero(t, backend.CallCount("CreateContest"))
	assert.Zero(t, backend.CallCount("CreateScoreTable"))
}

func TestCreateContest_WithoutScoreTable(t *testing.T) {
	a, backend, _ := newTestAPI(t)

	contest, err := a.CreateContest(context.Background(), player, shared.CreateContestRequest{Title: "Cup"}, nil)

	require.NoError(t, err)
	assert.Nil(t, contest.GamePointTableID)
	assert.Equal(t, 1, backend.CallCount("CreateContest"))
}

func TestListContests(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}
	backend.Contests[2] = shared.Contest{ContestID: 2}

	page, err := a.ListContests(ctx, stranger, 0)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 1, page.Page)

	_, err = a.CreateContest(ctx, player, shared.CreateContestRequest{Title: "New"}, nil)
	require.NoError(t, err)
	page, err = a.ListContests(ctx, stranger, 1)
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
}

// endregion

// region valorant tests

func TestRefreshValorant_Gate(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Valorant = &shared.ValorantInfo{CurrentTierPatched: "Gold 1", UpdatedAt: testNow.Add(-23 * time.Hour).Format(time.RFC3339)}

	status, err := a.RefreshValorant(ctx, player)
	assert.True(t, errors.Is(err, ErrRefreshTooSoon))
	assert.False(t, status.CanRefresh)
	assert.Zero(t, backend.CallCount("RefreshValorant"))

	backend.Valorant.UpdatedAt = testNow.Add(-24 * time.Hour).Format(time.RFC3339)
	require.NoError(t, a.Queries.Invalidate(ctx, query.ValorantKey(player.UserID)))
	backend.RefreshInfo = shared.ValorantInfo{CurrentTierPatched: "Gold 2", UpdatedAt: testNow.Format(time.RFC3339)}

	status, err = a.RefreshValorant(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, "Gold 2", status.Info.CurrentTierPatched)
	assert.False(t, status.CanRefresh)

	// The refreshed info is served from the cache
	got, err := a.ValorantInfo(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, "Gold 2", got.Info.CurrentTierPatched)
	assert.Equal(t, testNow.Add(24*time.Hour), got.NextRefresh)
	assert.Equal(t, 2, backend.CallCount("GetValorantInfo"))
}

func TestRegisterAndUnlinkValorant(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()

	_, err := a.ValorantInfo(ctx, player)
	assert.True(t, external.IsNotFound(err))

	_, err = a.RegisterValorant(ctx, player, shared.RegisterValorantRequest{Region: "mars", RiotName: "a", RiotTag: "b"})
	var verr *logic.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, backend.CallCount("RegisterValorant"))

	status, err := a.RegisterValorant(ctx, player, shared.RegisterValorantRequest{Region: "EU", RiotName: "a", RiotTag: "#b"})
	require.NoError(t, err)
	assert.Equal(t, "eu", status.Info.Region)
	assert.True(t, status.CanRefresh)

	got, err := a.ValorantInfo(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Info.RiotTag)

	require.NoError(t, a.UnlinkValorant(ctx, player))
	_, err = a.ValorantInfo(ctx, player)
	assert.True(t, external.IsNotFound(err))
}

// endregion

// region account tests

func TestUpdatePassword(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()

	err := a.UpdatePassword(ctx, player, "secret", "secrets")
	var verr *logic.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, backend.CallCount("UpdatePassword"))

	require.NoError(t, a.UpdatePassword(ctx, player, "secret", "secret"))
	assert.Equal(t, "secret", backend.Password)

	assert.True(t, errors.Is(a.UpdatePassword(ctx, stranger, "x", "x"), ErrNotLoggedIn))
}

func TestLoginLogout(t *testing.T) {
	a, backend, sessions := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}

	require.NoError(t, a.Login(ctx, stranger.UserID, shared.Credentials{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, a.IsLoggedIn(ctx, stranger))

	_, err := a.OpenApplication(ctx, stranger, 1)
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, stranger.UserID))
	assert.False(t, a.IsLoggedIn(ctx, stranger))
	_, open := a.Application(stranger, 1)
	assert.False(t, open)
	assert.True(t, errors.Is(a.Logout(ctx, stranger.UserID), store.ErrNoSession))

	sessions.StoreError = errors.New("write failed")
	assert.Error(t, a.Login(ctx, stranger.UserID, shared.Credentials{AccessToken: "a", RefreshToken: "r"}))
}

func TestHandleContestEvent(t *testing.T) {
	a, backend, _ := newTestAPI(t)
	ctx := context.Background()
	backend.Contests[1] = shared.Contest{ContestID: 1}

	_, err := a.ContestView(ctx, player, 1)
	require.NoError(t, err)
	backend.Contests[1] = shared.Contest{ContestID: 1, CurrentTeamCount: 5}

	require.NoError(t, a.HandleContestEvent(ctx, 1, "application_accepted"))
	view, err := a.ContestView(ctx, player, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Contest.CurrentTeamCount)

	assert.Error(t, a.HandleContestEvent(ctx, 0, "x"))
}

// endregion

// region UserMessage tests

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "fallback"))
	assert.Equal(t, ErrGateClosed.Error(), UserMessage(ErrGateClosed, "fallback"))
	assert.Equal(t, ErrNotLoggedIn.Error(), UserMessage(&external.APIError{Status: http.StatusUnauthorized}, "fallback"))
	assert.Equal(t, "server says no", UserMessage(&external.APIError{Status: 400, Message: "server says no"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("dial tcp: refused"), "fallback"))
	assert.Contains(t, UserMessage(&logic.ValidationError{Fields: map[string]string{"radiant": "required"}}, "fallback"), "radiant")
}

// endregion
