/* team.go
 * Contains the team invitation page and the invite mutation
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"fmt"

	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"

	"golang.org/x/sync/errgroup"
)

func (a *API) team(ctx context.Context, creds shared.Credentials, user shared.User, contestID int64) (*shared.Team, error) {
	return query.Fetch(ctx, a.Queries, query.TeamKey(contestID, user.UserID), query.NoRetry, func(ctx context.Context) (*shared.Team, error) {
		return a.Backend.GetTeam(ctx, creds, contestID)
	})
}

func (a *API) members(ctx context.Context, creds shared.Credentials, contestID int64, page int) (shared.Page[shared.Candidate], error) {
	return query.Fetch(ctx, a.Queries, query.MembersKey(contestID, page), query.ListRetry, func(ctx context.Context) (shared.Page[shared.Candidate], error) {
		return a.Backend.ListMembers(ctx, creds, contestID, page, logic.PageSize)
	})
}

// InvitePage loads the user's team and one page of contest members concurrently and resolves invite eligibility.
// Preconditions: Receives context, the discord user, contest id and a 1-based page, clamped to [1, total_pages]
// Postconditions: Returns the resolved view, or an error if either source failed. A missing team is an empty team
func (a *API) InvitePage(ctx context.Context, user shared.User, contestID int64, page int) (logic.InviteView, error) {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return logic.InviteView{}, err
	}
	if page < 1 {
		page = 1
	}

	var team *shared.Team
	var candidates shared.Page[shared.Candidate]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := a.team(gctx, creds, user, contestID)
		if err != nil {
			return fmt.Errorf("loading team: %w", err)
		}
		team = t
		return nil
	})
	g.Go(func() error {
		p, err := a.members(gctx, creds, contestID, page)
		if err != nil {
			return fmt.Errorf("loading members: %w", err)
		}
		candidates = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return logic.InviteView{}, err
	}

	// a page past the end is replaced by the last page once total_pages is known
	if last := logic.ClampPage(page, candidates.TotalPages); last != page {
		page = last
		candidates, err = a.members(ctx, creds, contestID, page)
		if err != nil {
			return logic.InviteView{}, fmt.Errorf("loading members: %w", err)
		}
	}
	if candidates.Page == 0 {
		candidates.Page = page
	}
	return logic.ResolveInvitations(team.MemberIDs(), candidates, logic.Readiness{TeamLoaded: true, CandidatesLoaded: true}), nil
}

// Invite sends a team invitation to a contest member. Members of the team are refused without a request.
// Eligibility is not flipped locally, the next roster fetch shows the new state
func (a *API) Invite(ctx context.Context, user shared.User, contestID int64, candidateID int64) error {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}
	team, err := a.team(ctx, creds, user, contestID)
	if err != nil {
		return fmt.Errorf("loading team: %w", err)
	}
	if team.MemberIDs()[candidateID] {
		return ErrAlreadyMember
	}

	if err := a.Backend.InviteMember(ctx, creds, contestID, candidateID); err != nil {
		return fmt.Errorf("inviting user %d: %w", candidateID, err)
	}
	a.Logger.Info().Str("user_id", user.UserID).Int64("contest_id", contestID).Int64("invited", candidateID).Msg("invite sent")
	return nil
}
