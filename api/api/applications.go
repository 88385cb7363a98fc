/* applications.go
 * Contains the contest view, the application session with its point gate and the apply and cancel mutations
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"errors"
	"fmt"

	"gamers-bot/api/external"
	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"

	"golang.org/x/sync/errgroup"
)

func (a *API) contest(ctx context.Context, creds shared.Credentials, contestID int64) (shared.Contest, error) {
	return query.Fetch(ctx, a.Queries, query.ContestKey(contestID), query.NoRetry, func(ctx context.Context) (shared.Contest, error) {
		return a.Backend.GetContest(ctx, creds, contestID)
	})
}

func (a *API) myApplication(ctx context.Context, creds shared.Credentials, user shared.User, contestID int64) (shared.MyApplication, error) {
	return query.Fetch(ctx, a.Queries, query.ApplicationKey(contestID, user.UserID), query.NoRetry, func(ctx context.Context) (shared.MyApplication, error) {
		return a.Backend.GetMyApplication(ctx, creds, contestID)
	})
}

// ContestView loads a contest and, for logged in users, their application, then derives the primary action.
// Preconditions: Receives context, the discord user and contest id
// Postconditions: Returns the view, or the error of either query
func (a *API) ContestView(ctx context.Context, user shared.User, contestID int64) (ContestView, error) {
	creds, err := a.credentials(ctx, user)
	loggedIn := err == nil
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return ContestView{}, err
	}

	view := ContestView{LoggedIn: loggedIn, Application: shared.MyApplication{Status: shared.StatusNone}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contest, err := a.contest(gctx, creds, contestID)
		if err != nil {
			return fmt.Errorf("loading contest %d: %w", contestID, err)
		}
		view.Contest = contest
		return nil
	})
	if loggedIn {
		g.Go(func() error {
			app, err := a.myApplication(gctx, creds, user, contestID)
			if err != nil {
				return fmt.Errorf("loading application for contest %d: %w", contestID, err)
			}
			view.Application = app
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ContestView{}, err
	}

	view.Application.Status = view.Application.Status.Normalize()
	view.Action = logic.DeriveAction(loggedIn, view.Application.Status)
	return view, nil
}

// OpenApplication starts an application session for the user, replacing any session already open for the contest.
// Preconditions: The user is logged in and their derived action is OpenApplication
// Postconditions: Returns the new session, its gate is IDLE
func (a *API) OpenApplication(ctx context.Context, user shared.User, contestID int64) (*ApplicationSession, error) {
	view, err := a.ContestView(ctx, user, contestID)
	if err != nil {
		return nil, err
	}
	if !view.LoggedIn {
		return nil, ErrNotLoggedIn
	}
	if view.Action.Kind != logic.OpenApplication {
		return nil, ErrActionUnavailable
	}

	session := &ApplicationSession{
		UserID:    user.UserID,
		ContestID: contestID,
		Contest:   view.Contest,
		Gate:      logic.NewPointGate(view.Contest.GamePointTableID),
		OpenedAt:  a.now(),
	}

	key := sessionKey{userID: user.UserID, contestID: contestID}
	a.mu.Lock()
	if previous, ok := a.applications[key]; ok {
		previous.Gate.Close()
	}
	a.applications[key] = session
	a.mu.Unlock()

	return session, nil
}

// Application returns the open session for a user and contest
func (a *API) Application(user shared.User, contestID int64) (*ApplicationSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	session, ok := a.applications[sessionKey{userID: user.UserID, contestID: contestID}]
	return session, ok
}

// CloseApplication resets and forgets the session. Closing a session that is not open does nothing
func (a *API) CloseApplication(user shared.User, contestID int64) {
	key := sessionKey{userID: user.UserID, contestID: contestID}
	a.mu.Lock()
	session, ok := a.applications[key]
	delete(a.applications, key)
	a.mu.Unlock()

	if ok {
		session.Gate.Close()
	}
}

// CalculatePoints runs the point calculation of the open session. The result is kept in the session only
func (a *API) CalculatePoints(ctx context.Context, user shared.User, contestID int64) (logic.GateSnapshot, error) {
	session, ok := a.Application(user, contestID)
	if !ok {
		return logic.GateSnapshot{}, ErrNoApplication
	}
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return session.Gate.Snapshot(), err
	}

	return session.Gate.Calculate(ctx, func(ctx context.Context, scoreTableID int64) (shared.PointCalculation, error) {
		return a.Backend.GetContestPoint(ctx, creds, contestID, scoreTableID)
	}, external.ServerMessage)
}

// Apply sends the application of the open session once its gate allows confirming.
// Preconditions: An application session is open and its gate allows confirm
// Postconditions: The session is closed once the request was sent. On success the application status and the contest
// are invalidated together. The status only changes through the refetch, never optimistically
func (a *API) Apply(ctx context.Context, user shared.User, contestID int64) error {
	session, ok := a.Application(user, contestID)
	if !ok {
		return ErrNoApplication
	}
	if !session.Gate.CanConfirm() {
		return ErrGateClosed
	}
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}

	err = a.Backend.Apply(ctx, creds, contestID)
	a.CloseApplication(user, contestID)
	if err != nil {
		a.Logger.Info().Err(err).Str("user_id", user.UserID).Int64("contest_id", contestID).Msg("apply rejected")
		return fmt.Errorf("applying to contest %d: %w", contestID, err)
	}

	a.invalidateDependents(ctx, contestID, user)
	return nil
}

// CancelApplication cancels the user's pending application
func (a *API) CancelApplication(ctx context.Context, user shared.User, contestID int64) error {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}
	if err := a.Backend.CancelApplication(ctx, creds, contestID); err != nil {
		return fmt.Errorf("cancelling application to contest %d: %w", contestID, err)
	}

	a.invalidateDependents(ctx, contestID, user)
	return nil
}

func (a *API) invalidateDependents(ctx context.Context, contestID int64, user shared.User) {
	if err := a.Queries.Invalidate(ctx, query.Dependents(contestID, user.UserID)...); err != nil {
		a.Logger.Warn().Err(err).Int64("contest_id", contestID).Msg("failed to invalidate application queries")
	}
}

// ListApplications returns the applications of a contest for its operator
func (a *API) ListApplications(ctx context.Context, user shared.User, contestID int64) ([]shared.Application, error) {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return nil, err
	}
	return a.Backend.ListApplications(ctx, creds, contestID)
}

// AcceptApplication and RejectApplication decide on a pending application. The applicant's cached status is not
// keyed by anything the operator knows, so every application of the contest is invalidated
func (a *API) AcceptApplication(ctx context.Context, user shared.User, contestID int64, applicantID int64) error {
	return a.decide(ctx, user, contestID, applicantID, a.Backend.AcceptApplication)
}

func (a *API) RejectApplication(ctx context.Context, user shared.User, contestID int64, applicantID int64) error {
	return a.decide(ctx, user, contestID, applicantID, a.Backend.RejectApplication)
}

func (a *API) decide(ctx context.Context, user shared.User, contestID int64, applicantID int64,
	fn func(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error) error {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}
	if err := fn(ctx, creds, contestID, applicantID); err != nil {
		return err
	}
	if err := a.Queries.InvalidateContest(ctx, contestID); err != nil {
		a.Logger.Warn().Err(err).Int64("contest_id", contestID).Msg("failed to invalidate contest queries")
	}
	return nil
}
