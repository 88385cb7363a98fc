/* api.go
 * This file contains the public methods for interacting with this package. Consumers (the bot and the web server)
 * should only call the methods of API, not the sub packages. Reads go through the query layer, mutations call the
 * platform through the backend and then invalidate every query they affect
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gamers-bot/api/external"
	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"
	"gamers-bot/api/store"

	"github.com/rs/zerolog"
)

// API provides the contest operations for discord users
type API struct {
	Backend  external.Backend
	Queries  *query.Client
	Sessions store.Interface
	Logger   zerolog.Logger
	Now      func() time.Time

	mu           sync.Mutex
	applications map[sessionKey]*ApplicationSession
}

// NewAPI creates a new API instance from its collaborators
// Preconditions: Receives a backend, a query client and a session store, none of which may be nil
// Postconditions: Returns pointer to API, or error if a collaborator is missing
func NewAPI(backend external.Backend, queries *query.Client, sessions store.Interface, logger zerolog.Logger) (*API, error) {
	if backend == nil || queries == nil || sessions == nil {
		return nil, fmt.Errorf("backend, queries and sessions are required")
	}
	return &API{
		Backend:      backend,
		Queries:      queries,
		Sessions:     sessions,
		Logger:       logger,
		Now:          time.Now,
		applications: make(map[sessionKey]*ApplicationSession),
	}, nil
}

func (a *API) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// credentials returns the stored credentials of a logged in user, ErrNotLoggedIn otherwise
func (a *API) credentials(ctx context.Context, user shared.User) (shared.Credentials, error) {
	creds, err := a.Sessions.GetCredentials(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return shared.Credentials{}, ErrNotLoggedIn
		}
		return shared.Credentials{}, fmt.Errorf("loading session: %w", err)
	}
	if !creds.IsLoggedIn(a.now()) {
		return shared.Credentials{}, ErrNotLoggedIn
	}
	return creds, nil
}

// IsLoggedIn reports whether the user has a usable session
func (a *API) IsLoggedIn(ctx context.Context, user shared.User) bool {
	_, err := a.credentials(ctx, user)
	return err == nil
}

// Login stores the credentials the auth service issued for a discord user
func (a *API) Login(ctx context.Context, discordUserID string, creds shared.Credentials) error {
	if err := a.Sessions.StoreCredentials(ctx, discordUserID, creds); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	a.Logger.Info().Str("user_id", discordUserID).Msg("session stored")
	return nil
}

// Logout forgets a user's credentials, open applications and cached account data
func (a *API) Logout(ctx context.Context, discordUserID string) error {
	if err := a.Sessions.DeleteCredentials(ctx, discordUserID); err != nil {
		return err
	}

	a.mu.Lock()
	for key, session := range a.applications {
		if key.userID == discordUserID {
			session.Gate.Close()
			delete(a.applications, key)
		}
	}
	a.mu.Unlock()

	if err := a.Queries.Invalidate(ctx, query.ValorantKey(discordUserID)); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to invalidate account queries on logout")
	}
	return nil
}

// HandleContestEvent invalidates every query of a contest after the platform reported a change to it
func (a *API) HandleContestEvent(ctx context.Context, contestID int64, event string) error {
	if contestID <= 0 {
		return fmt.Errorf("invalid contest id %d", contestID)
	}
	a.Logger.Info().Int64("contest_id", contestID).Str("event", event).Msg("contest event received")
	return a.Queries.InvalidateContest(ctx, contestID)
}

// UpdatePassword changes the user's platform password after checking the confirmation
func (a *API) UpdatePassword(ctx context.Context, user shared.User, password string, confirm string) error {
	if err := logic.ValidatePasswordChange(password, confirm); err != nil {
		return err
	}
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}
	return a.Backend.UpdatePassword(ctx, creds, password)
}
