/* valorant.go
 * Contains the rank account and score table resources of the platform api
 * Authors: Gamers Bot contributors
 */

package external

import (
	"context"
	"net/http"

	"gamers-bot/api/shared"
)

// GetValorantInfo fetches the current user's linked rank account. A 404 means no account is linked
func (c *Client) GetValorantInfo(ctx context.Context, creds shared.Credentials) (shared.ValorantInfo, error) {
	var info shared.ValorantInfo
	if err := c.do(ctx, creds, http.MethodGet, "/users/valorant", nil, nil, &info); err != nil {
		return shared.ValorantInfo{}, err
	}
	return info, nil
}

// RegisterValorant links a rank account to the current user
func (c *Client) RegisterValorant(ctx context.Context, creds shared.Credentials, req shared.RegisterValorantRequest) (shared.ValorantInfo, error) {
	var info shared.ValorantInfo
	if err := c.do(ctx, creds, http.MethodPost, "/users/valorant", nil, req, &info); err != nil {
		return shared.ValorantInfo{}, err
	}
	return info, nil
}

// RefreshValorant asks the platform to re-read the linked account's rank
func (c *Client) RefreshValorant(ctx context.Context, creds shared.Credentials) (shared.ValorantInfo, error) {
	var info shared.ValorantInfo
	if err := c.do(ctx, creds, http.MethodPost, "/users/valorant/refresh", nil, nil, &info); err != nil {
		return shared.ValorantInfo{}, err
	}
	return info, nil
}

// UnlinkValorant removes the linked rank account
func (c *Client) UnlinkValorant(ctx context.Context, creds shared.Credentials) error {
	return c.do(ctx, creds, http.MethodDelete, "/users/valorant", nil, nil, nil)
}

// CreateScoreTable stores a complete 25 tier score table and returns its id
func (c *Client) CreateScoreTable(ctx context.Context, creds shared.Credentials, table shared.ScoreTable) (int64, error) {
	var res shared.ScoreTableCreated
	if err := c.do(ctx, creds, http.MethodPost, "/valorant/score-tables", nil, table, &res); err != nil {
		return 0, err
	}
	return res.ScoreTableID, nil
}
