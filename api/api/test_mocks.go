/* test_mocks.go
 * Contains mock implementations of the platform backend and the session store for testing the API package and its
 * consumers
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"gamers-bot/api/external"
	"gamers-bot/api/shared"
	"gamers-bot/api/store"
)

// MockBackend implements external.Backend in memory. Applications are tracked for a single caller per contest
type MockBackend struct {
	mu sync.Mutex

	// Storage for mock data
	Contests     map[int64]shared.Contest
	Applications map[int64]shared.ApplicationStatus
	Operator     map[int64][]shared.Application
	Teams        map[int64]*shared.Team
	Members      map[int64][]shared.Candidate
	Points       map[int64]shared.PointCalculation
	ScoreTables  map[int64]shared.ScoreTable
	Valorant     *shared.ValorantInfo
	RefreshInfo  shared.ValorantInfo
	Invites      map[int64][]int64
	Created      []shared.CreateContestRequest
	Password     string
	nextTableID  int64

	// Calls counts invocations per method name
	Calls map[string]int

	// Error injection for testing error paths
	GetContestError       error
	ListContestsError     error
	CreateContestError    error
	GetApplicationError   error
	ApplyError            error
	CancelError           error
	DecideError           error
	GetTeamError          error
	ListMembersError      error
	InviteError           error
	PointError            error
	CreateScoreTableError error
	ValorantError         error
	RegisterError         error
	RefreshError          error
	UnlinkError           error
	PasswordError         error
}

// NewMockBackend creates a MockBackend with empty storage
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Contests:     make(map[int64]shared.Contest),
		Applications: make(map[int64]shared.ApplicationStatus),
		Operator:     make(map[int64][]shared.Application),
		Teams:        make(map[int64]*shared.Team),
		Members:      make(map[int64][]shared.Candidate),
		Points:       make(map[int64]shared.PointCalculation),
		ScoreTables:  make(map[int64]shared.ScoreTable),
		Invites:      make(map[int64][]int64),
		Calls:        make(map[string]int),
		nextTableID:  100,
	}
}

var _ external.Backend = (*MockBackend)(nil)

func (m *MockBackend) call(name string) {
	m.Calls[name]++
}

// CallCount returns how often a method was called
func (m *MockBackend) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func notFound(message string) error {
	return &external.APIError{Status: http.StatusNotFound, Message: message}
}

func (m *MockBackend) GetContest(_ context.Context, _ shared.Credentials, contestID int64) (shared.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetContest")
	if m.GetContestError != nil {
		return shared.Contest{}, m.GetContestError
	}
	contest, ok := m.Contests[contestID]
	if !ok {
		return shared.Contest{}, notFound("contest not found")
	}
	return contest, nil
}

func (m *MockBackend) ListContests(_ context.Context, _ shared.Credentials, page int, pageSize int) (shared.Page[shared.Contest], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("ListContests")
	if m.ListContestsError != nil {
		return shared.Page[shared.Contest]{}, m.ListContestsError
	}
	all := make([]shared.Contest, 0, len(m.Contests))
	for _, contest := range m.Contests {
		all = append(all, contest)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ContestID < all[j].ContestID })
	return paginate(all, page, pageSize), nil
}

func (m *MockBackend) CreateContest(_ context.Context, _ shared.Credentials, req shared.CreateContestRequest) (shared.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreateContest")
	if m.CreateContestError != nil {
		return shared.Contest{}, m.CreateContestError
	}
	m.Created = append(m.Created, req)
	contest := shared.Contest{
		ContestID:        int64(len(m.Contests) + 1),
		Title:            req.Title,
		ContestType:      req.ContestType,
		ContestStatus:    "PENDING",
		MaxTeamCount:     req.MaxTeamCount,
		GamePointTableID: req.GamePointTableID,
	}
	m.Contests[contest.ContestID] = contest
	return contest, nil
}

func (m *MockBackend) GetMyApplication(_ context.Context, _ shared.Credentials, contestID int64) (shared.MyApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetMyApplication")
	if m.GetApplicationError != nil {
		return shared.MyApplication{}, m.GetApplicationError
	}
	status, ok := m.Applications[contestID]
	if !ok {
		return shared.MyApplication{Status: shared.StatusNone}, nil
	}
	return shared.MyApplication{Status: status}, nil
}

// Apply moves the caller to PENDING and counts them as a participant
func (m *MockBackend) Apply(_ context.Context, _ shared.Credentials, contestID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("Apply")
	if m.ApplyError != nil {
		return m.ApplyError
	}
	contest, ok := m.Contests[contestID]
	if !ok {
		return notFound("contest not found")
	}
	if status := m.Applications[contestID]; status == shared.StatusPending || status == shared.StatusAccepted {
		return &external.APIError{Status: http.StatusConflict, Message: "already applied"}
	}
	m.Applications[contestID] = shared.StatusPending
	contest.CurrentTeamCount++
	m.Contests[contestID] = contest
	return nil
}

// CancelApplication moves a PENDING caller back to NONE
func (m *MockBackend) CancelApplication(_ context.Context, _ shared.Credentials, contestID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CancelApplication")
	if m.CancelError != nil {
		return m.CancelError
	}
	if m.Applications[contestID] != shared.StatusPending {
		return &external.APIError{Status: http.StatusBadRequest, Message: "no pending application"}
	}
	m.Applications[contestID] = shared.StatusNone
	contest := m.Contests[contestID]
	contest.CurrentTeamCount--
	m.Contests[contestID] = contest
	return nil
}

func (m *MockBackend) ListApplications(_ context.Context, _ shared.Credentials, contestID int64) ([]shared.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("ListApplications")
	return append([]shared.Application(nil), m.Operator[contestID]...), nil
}

func (m *MockBackend) AcceptApplication(_ context.Context, _ shared.Credentials, contestID int64, userID int64) error {
	return m.decide("AcceptApplication", contestID, userID, shared.StatusAccepted)
}

func (m *MockBackend) RejectApplication(_ context.Context, _ shared.Credentials, contestID int64, userID int64) error {
	return m.decide("RejectApplication", contestID, userID, shared.StatusRejected)
}

func (m *MockBackend) decide(name string, contestID int64, userID int64, status shared.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call(name)
	if m.DecideError != nil {
		return m.DecideError
	}
	for i, app := range m.Operator[contestID] {
		if app.UserID == userID {
			m.Operator[contestID][i].Status = status
			return nil
		}
	}
	return notFound("application not found")
}

func (m *MockBackend) GetTeam(_ context.Context, _ shared.Credentials, contestID int64) (*shared.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetTeam")
	if m.GetTeamError != nil {
		return nil, m.GetTeamError
	}
	team, ok := m.Teams[contestID]
	if !ok || team == nil {
		return nil, nil
	}
	copied := *team
	copied.Members = append([]shared.TeamMember(nil), team.Members...)
	return &copied, nil
}

func (m *MockBackend) ListMembers(_ context.Context, _ shared.Credentials, contestID int64, page int, pageSize int) (shared.Page[shared.Candidate], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("ListMembers")
	if m.ListMembersError != nil {
		return shared.Page[shared.Candidate]{}, m.ListMembersError
	}
	return paginate(m.Members[contestID], page, pageSize), nil
}

func (m *MockBackend) InviteMember(_ context.Context, _ shared.Credentials, contestID int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("InviteMember")
	if m.InviteError != nil {
		return m.InviteError
	}
	m.Invites[contestID] = append(m.Invites[contestID], userID)
	return nil
}

func (m *MockBackend) GetContestPoint(_ context.Context, _ shared.Credentials, contestID int64, scoreTableID int64) (shared.PointCalculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetContestPoint")
	if m.PointError != nil {
		return shared.PointCalculation{}, m.PointError
	}
	if _, ok := m.ScoreTables[scoreTableID]; !ok {
		return shared.PointCalculation{}, notFound("score table not found")
	}
	return m.Points[contestID], nil
}

func (m *MockBackend) CreateScoreTable(_ context.Context, _ shared.Credentials, table shared.ScoreTable) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("CreateScoreTable")
	if m.CreateScoreTableError != nil {
		return 0, m.CreateScoreTableError
	}
	m.nextTableID++
	m.ScoreTables[m.nextTableID] = table
	return m.nextTableID, nil
}

func (m *MockBackend) GetValorantInfo(_ context.Context, _ shared.Credentials) (shared.ValorantInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetValorantInfo")
	if m.ValorantError != nil {
		return shared.ValorantInfo{}, m.ValorantError
	}
	if m.Valorant == nil {
		return shared.ValorantInfo{}, notFound("valorant account not linked")
	}
	return *m.Valorant, nil
}

func (m *MockBackend) RegisterValorant(_ context.Context, _ shared.Credentials, req shared.RegisterValorantRequest) (shared.ValorantInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("RegisterValorant")
	if m.RegisterError != nil {
		return shared.ValorantInfo{}, m.RegisterError
	}
	info := shared.ValorantInfo{Region: req.Region, RiotName: req.RiotName, RiotTag: req.RiotTag}
	m.Valorant = &info
	return info, nil
}

func (m *MockBackend) RefreshValorant(_ context.Context, _ shared.Credentials) (shared.ValorantInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("RefreshValorant")
	if m.RefreshError != nil {
		return shared.ValorantInfo{}, m.RefreshError
	}
	info := m.RefreshInfo
	m.Valorant = &info
	return info, nil
}

func (m *MockBackend) UnlinkValorant(_ context.Context, _ shared.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("UnlinkValorant")
	if m.UnlinkError != nil {
		return m.UnlinkError
	}
	m.Valorant = nil
	return nil
}

func (m *MockBackend) UpdatePassword(_ context.Context, _ shared.Credentials, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("UpdatePassword")
	if m.PasswordError != nil {
		return m.PasswordError
	}
	m.Password = password
	return nil
}

func paginate[T any](items []T, page int, pageSize int) shared.Page[T] {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return shared.Page[T]{
		Data:       append([]T{}, items[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: len(items),
		TotalPages: totalPages,
	}
}

// MockSessions implements store.Interface in memory
type MockSessions struct {
	mu          sync.Mutex
	Credentials map[string]shared.Credentials

	// Error injection for testing error paths
	GetError    error
	StoreError  error
	DeleteError error
}

// NewMockSessions creates a MockSessions with the given users logged in
func NewMockSessions(loggedIn ...string) *MockSessions {
	m := &MockSessions{Credentials: make(map[string]shared.Credentials)}
	for _, userID := range loggedIn {
		m.Credentials[userID] = shared.Credentials{AccessToken: "access-" + userID, RefreshToken: "refresh-" + userID}
	}
	return m
}

var _ store.Interface = (*MockSessions)(nil)

func (m *MockSessions) GetCredentials(_ context.Context, userID string) (shared.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return shared.Credentials{}, m.GetError
	}
	creds, ok := m.Credentials[userID]
	if !ok {
		return shared.Credentials{}, store.ErrNoSession
	}
	return creds, nil
}

func (m *MockSessions) StoreCredentials(_ context.Context, userID string, creds shared.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreError != nil {
		return m.StoreError
	}
	m.Credentials[userID] = creds
	return nil
}

func (m *MockSessions) DeleteCredentials(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Credentials[userID]; !ok {
		return store.ErrNoSession
	}
	delete(m.Credentials, userID)
	return nil
}
