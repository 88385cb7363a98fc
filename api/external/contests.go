/* contests.go
 * Contains the contest, application, team and member resources of the platform api
 * Authors: Gamers Bot contributors
 */

package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gamers-bot/api/shared"
)

// GetContest fetches a single contest record
func (c *Client) GetContest(ctx context.Context, creds shared.Credentials, contestID int64) (shared.Contest, error) {
	var contest shared.Contest
	if err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d", contestID), nil, nil, &contest); err != nil {
		return shared.Contest{}, err
	}
	return contest, nil
}

// ListContests fetches a page of contests
// Preconditions: Receives a 1-based page index and page size
// Postconditions: Returns the page as sent by the server, or error if it occurs
func (c *Client) ListContests(ctx context.Context, creds shared.Credentials, page int, pageSize int) (shared.Page[shared.Contest], error) {
	var res shared.Page[shared.Contest]
	err := c.do(ctx, creds, http.MethodGet, "/contests", pageQuery(page, pageSize), nil, &res)
	return res, err
}

// CreateContest creates a contest. The score table (if any) must already exist and be referenced by GamePointTableID
func (c *Client) CreateContest(ctx context.Context, creds shared.Credentials, req shared.CreateContestRequest) (shared.Contest, error) {
	var contest shared.Contest
	if err := c.do(ctx, creds, http.MethodPost, "/contests", nil, req, &contest); err != nil {
		return shared.Contest{}, err
	}
	return contest, nil
}

// GetMyApplication fetches the current user's application for a contest.
// Preconditions: Receives credentials of a logged in user
// Postconditions: Returns the application. A 404 is the valid "never applied" state and is returned as status NONE
func (c *Client) GetMyApplication(ctx context.Context, creds shared.Credentials, contestID int64) (shared.MyApplication, error) {
	var app shared.MyApplication
	err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d/applications/me", contestID), nil, nil, &app)
	if err != nil {
		if IsNotFound(err) {
			return shared.MyApplication{Status: shared.StatusNone}, nil
		}
		return shared.MyApplication{}, err
	}
	app.Status = app.Status.Normalize()
	return app, nil
}

// Apply sends an application to join the contest
func (c *Client) Apply(ctx context.Context, creds shared.Credentials, contestID int64) error {
	return c.do(ctx, creds, http.MethodPost, fmt.Sprintf("/contests/%d/applications", contestID), nil, nil, nil)
}

// CancelApplication withdraws the current user's pending application
func (c *Client) CancelApplication(ctx context.Context, creds shared.Credentials, contestID int64) error {
	return c.do(ctx, creds, http.MethodDelete, fmt.Sprintf("/contests/%d/applications/cancel", contestID), nil, nil, nil)
}

// ListApplications fetches every application for a contest. Only available to the contest's organiser
func (c *Client) ListApplications(ctx context.Context, creds shared.Credentials, contestID int64) ([]shared.Application, error) {
	var apps []shared.Application
	err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d/applications", contestID), nil, nil, &apps)
	return apps, err
}

// AcceptApplication moves a user's PENDING application to ACCEPTED
func (c *Client) AcceptApplication(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error {
	return c.do(ctx, creds, http.MethodPost, fmt.Sprintf("/contests/%d/applications/%d/accept", contestID, userID), nil, nil, nil)
}

// RejectApplication moves a user's PENDING application to REJECTED
func (c *Client) RejectApplication(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error {
	return c.do(ctx, creds, http.MethodPost, fmt.Sprintf("/contests/%d/applications/%d/reject", contestID, userID), nil, nil, nil)
}

// GetTeam fetches the current user's team for a contest.
// Postconditions: Returns the team, or nil with no error when the user has no team yet (404)
func (c *Client) GetTeam(ctx context.Context, creds shared.Credentials, contestID int64) (*shared.Team, error) {
	var team shared.Team
	err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d/team", contestID), nil, nil, &team)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

// ListMembers fetches a page of contest participants
func (c *Client) ListMembers(ctx context.Context, creds shared.Credentials, contestID int64, page int, pageSize int) (shared.Page[shared.Candidate], error) {
	var res shared.Page[shared.Candidate]
	err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d/members", contestID), pageQuery(page, pageSize), nil, &res)
	return res, err
}

// InviteMember invites a contest participant to the current user's team
func (c *Client) InviteMember(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error {
	body := map[string]int64{"user_id": userID}
	return c.do(ctx, creds, http.MethodPost, fmt.Sprintf("/contests/%d/team/invite", contestID), nil, body, nil)
}

// GetContestPoint calculates the current user's points for a contest against a score table
func (c *Client) GetContestPoint(ctx context.Context, creds shared.Credentials, contestID int64, scoreTableID int64) (shared.PointCalculation, error) {
	var point shared.PointCalculation
	query := url.Values{}
	query.Set("scoreTableId", strconv.FormatInt(scoreTableID, 10))
	if err := c.do(ctx, creds, http.MethodGet, fmt.Sprintf("/contests/%d/valorant-point", contestID), query, nil, &point); err != nil {
		return shared.PointCalculation{}, err
	}
	return point, nil
}

// UpdatePassword changes the current user's password
func (c *Client) UpdatePassword(ctx context.Context, creds shared.Credentials, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, creds, http.MethodPatch, "/users/me", nil, body, nil)
}

func pageQuery(page int, pageSize int) url.Values {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	return query
}
