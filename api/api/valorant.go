/* valorant.go
 * Contains the linked rank account operations
 * Authors: Gamers Bot contributors
 */

package api

import (
	"context"
	"fmt"

	"gamers-bot/api/logic"
	"gamers-bot/api/query"
	"gamers-bot/api/shared"
)

func (a *API) valorantInfo(ctx context.Context, creds shared.Credentials, user shared.User) (shared.ValorantInfo, error) {
	return query.Fetch(ctx, a.Queries, query.ValorantKey(user.UserID), query.NoRetry, func(ctx context.Context) (shared.ValorantInfo, error) {
		return a.Backend.GetValorantInfo(ctx, creds)
	})
}

func (a *API) valorantStatus(info shared.ValorantInfo) ValorantStatus {
	status := ValorantStatus{Info: info, CanRefresh: logic.CanRefreshInfo(info, a.now())}
	if updatedAt, ok := info.LastUpdated(); ok {
		status.NextRefresh = logic.NextRefresh(updatedAt)
	}
	return status
}

// ValorantInfo returns the user's linked rank account and whether it can be refreshed now
func (a *API) ValorantInfo(ctx context.Context, user shared.User) (ValorantStatus, error) {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return ValorantStatus{}, err
	}
	info, err := a.valorantInfo(ctx, creds, user)
	if err != nil {
		return ValorantStatus{}, err
	}
	return a.valorantStatus(info), nil
}

// RegisterValorant links a rank account. Invalid input is rejected before any request
func (a *API) RegisterValorant(ctx context.Context, user shared.User, req shared.RegisterValorantRequest) (ValorantStatus, error) {
	req, err := logic.ValidateRegistration(req)
	if err != nil {
		return ValorantStatus{}, err
	}
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return ValorantStatus{}, err
	}

	info, err := a.Backend.RegisterValorant(ctx, creds, req)
	if err != nil {
		return ValorantStatus{}, fmt.Errorf("registering rank account: %w", err)
	}
	if err := a.Queries.Invalidate(ctx, query.ValorantKey(user.UserID)); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to invalidate rank account")
	}
	return a.valorantStatus(info), nil
}

// RefreshValorant refreshes the rank account once the 24 hour cool down passed. The refreshed info replaces the
// cached one
func (a *API) RefreshValorant(ctx context.Context, user shared.User) (ValorantStatus, error) {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return ValorantStatus{}, err
	}
	current, err := a.valorantInfo(ctx, creds, user)
	if err != nil {
		return ValorantStatus{}, err
	}
	if !logic.CanRefreshInfo(current, a.now()) {
		return a.valorantStatus(current), ErrRefreshTooSoon
	}

	info, err := a.Backend.RefreshValorant(ctx, creds)
	if err != nil {
		return ValorantStatus{}, fmt.Errorf("refreshing rank account: %w", err)
	}
	query.Put(ctx, a.Queries, query.ValorantKey(user.UserID), info, 0)
	return a.valorantStatus(info), nil
}

// UnlinkValorant removes the linked rank account
func (a *API) UnlinkValorant(ctx context.Context, user shared.User) error {
	creds, err := a.credentials(ctx, user)
	if err != nil {
		return err
	}
	if err := a.Backend.UnlinkValorant(ctx, creds); err != nil {
		return fmt.Errorf("unlinking rank account: %w", err)
	}
	return a.Queries.Invalidate(ctx, query.ValorantKey(user.UserID))
}
