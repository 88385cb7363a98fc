/* contests.go
 * Contains contest listing, score table submission and contest creation
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"errors"
	"fmt"

	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"
)

const contestsPageSize = 10

// ListContests returns one page of contests, clamped to the last page. Logged out users see the public listing
func (a *API) ListContests(ctx context.Context, user shared.User, page int) (shared.Page[shared.Contest], error) {
	creds, err := a.credentials(ctx, user)
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return shared.Page[shared.Contest]{}, err
	}
	if page < 1 {
		page = 1
	}
	contests, err := a.contestPage(ctx, creds, page)
	if err != nil {
		return contests, err
	}
	if last := logic.ClampPage(page, contests.TotalPages); last != page {
		page = last
		if contests, err = a.contestPage(ctx, creds, page); err != nil {
			return contests, err
		}
	}
	contests.Page = page
	return contests, nil
}

func (a *API) contestPage(ctx context.Context, creds shared.Credentials, page int) (shared.Page[shared.Contest], error) {
	return query.Fetch(ctx, a.Queries, query.ContestsKey(page), query.ListRetry, func(ctx context.Context) (shared.Page[shared.Contest], error) {
		return a.Backend.ListContests(ctx, creds, page, contestsPageSize)
	})
}

// CreateScoreTable validates the form and submits it.
// Preconditions: Receives context, the discord user and the raw form
// Postconditions: Returns the new score table id. A *logic.ValidationError means nothing was sent
func (a *API) CreateScoreTable(ctx context.Context, user shared.User, form logic.ScoreTableForm) (int64, error) {
	table, err := form.Validate()
	if err != nil {
		return 0, err
	}
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return 0, err
	}
	id, err := a.Backend.CreateScoreTable(ctx, creds, table)
	if err != nil {
		return 0, fmt.Errorf("creating score table: %w", err)
	}
	return id, nil
}

// ScoreTableStep is the score table step of contest creation
type ScoreTableStep struct {
	API  *API
	User shared.User
	Form logic.ScoreTableForm
}

var _ logic.ScoreTableSubmitter = (*ScoreTableStep)(nil)

func (s *ScoreTableStep) Submit(ctx context.Context) (int64, error) {
	return s.API.CreateScoreTable(ctx, s.User, s.Form)
}

// CreateContest creates a contest. When a submitter is given it runs first and its id becomes the contest's
// game_point_table_id, a failing submitter means the contest is never sent
func (a *API) CreateContest(ctx context.Context, user shared.User, req shared.CreateContestRequest, submitter logic.ScoreTableSubmitter) (shared.Contest, error) {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return shared.Contest{}, err
	}

	if submitter != nil {
		id, err := submitter.Submit(ctx)
		if err != nil {
			return shared.Contest{}, fmt.Errorf("score table step: %w", err)
		}
		req.GamePointTableID = &id
	}

	contest, err := a.Backend.CreateContest(ctx, creds, req)
	if err != nil {
		return shared.Contest{}, fmt.Errorf("creating contest: %w", err)
	}
	if err := a.Queries.InvalidatePrefix(ctx, "contests:"); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to invalidate contest listing")
	}
	return contest, nil
}
