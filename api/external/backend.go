/* backend.go
 * Contains the Backend interface so the api facade can be tested without a running platform
 * Authors: Gamers Bot contributors
 */

package external

import (
	"context"

	"gamers-bot/api/shared"
)

// Backend defines the platform operations Client implements.
// This allows for mocking in tests.
type Backend interface {
	GetContest(ctx context.Context, creds shared.Credentials, contestID int64) (shared.Contest, error)
	ListContests(ctx context.Context, creds shared.Credentials, page int, pageSize int) (shared.Page[shared.Contest], error)
	CreateContest(ctx context.Context, creds shared.Credentials, req shared.CreateContestRequest) (shared.Contest, error)

	GetMyApplication(ctx context.Context, creds shared.Credentials, contestID int64) (shared.MyApplication, error)
	Apply(ctx context.Context, creds shared.Credentials, contestID int64) error
	CancelApplication(ctx context.Context, creds shared.Credentials, contestID int64) error
	ListApplications(ctx context.Context, creds shared.Credentials, contestID int64) ([]shared.Application, error)
	AcceptApplication(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error
	RejectApplication(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error

	GetTeam(ctx context.Context, creds shared.Credentials, contestID int64) (*shared.Team, error)
	ListMembers(ctx context.Context, creds shared.Credentials, contestID int64, page int, pageSize int) (shared.Page[shared.Candidate], error)
	InviteMember(ctx context.Context, creds shared.Credentials, contestID int64, userID int64) error

	GetContestPoint(ctx context.Context, creds shared.Credentials, contestID int64, scoreTableID int64) (shared.PointCalculation, error)
	CreateScoreTable(ctx context.Context, creds shared.Credentials, table shared.ScoreTable) (int64, error)

	GetValorantInfo(ctx context.Context, creds shared.Credentials) (shared.ValorantInfo, error)
	RegisterValorant(ctx context.Context, creds shared.Credentials, req shared.RegisterValorantRequest) (shared.ValorantInfo, error)
	RefreshValorant(ctx context.Context, creds shared.Credentials) (shared.ValorantInfo, error)
	UnlinkValorant(ctx context.Context, creds shared.Credentials) error

	UpdatePassword(ctx context.Context, creds shared.Credentials, password string) error
}

// Ensure Client implements Backend
var _ Backend = (*Client)(nil)
