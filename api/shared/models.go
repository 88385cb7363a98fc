/* models.go
 * This file contain the structs and helper functions that are shared between sub packages, the bot and the web server.
 * Field names and json tags follow the contest platform's REST payloads
 * Authors: Gamers Bot contributors
 */

package shared

import "time"

// User is the discord identity a command or request was made by
type User struct {
	UserID   string
	Username string
}

// ApplicationStatus is the lifecycle state of a user's application to a contest
type ApplicationStatus string

const (
	StatusNone     ApplicationStatus = "NONE"
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

// Normalize maps any value the backend could send onto one of the four known statuses. Unknown values are NONE
func (s ApplicationStatus) Normalize() ApplicationStatus {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return s
	default:
		return StatusNone
	}
}

// MyApplication is the response for GET /contests/{id}/applications/me
type MyApplication struct {
	Status        ApplicationStatus `json:"status"`
	ApplicationID *int64            `json:"application_id,omitempty"`
}

// Application is a single entry of the operator's application list
type Application struct {
	ApplicationID int64             `json:"application_id,omitempty"`
	UserID        int64             `json:"user_id"`
	Username      string            `json:"username"`
	Tag           string            `json:"tag"`
	CreatedAt     string            `json:"created_at"`
	Status        ApplicationStatus `json:"status"`
}

// Contest is the contest record returned by GET /contests/{id}
type Contest struct {
	ContestID            int64  `json:"contest_id"`
	Title                string `json:"title"`
	Description          string `json:"description,omitempty"`
	ContestType          string `json:"contest_type"`
	GameType             string `json:"game_type,omitempty"`
	ContestStatus        string `json:"contest_status"`
	MaxTeamCount         int    `json:"max_team_count,omitempty"`
	CurrentTeamCount     int    `json:"current_team_count,omitempty"`
	TotalTeamMember      int    `json:"total_team_member,omitempty"`
	TotalPoint           int    `json:"total_point"`
	Thumbnail            string `json:"thumbnail,omitempty"`
	StartedAt            string `json:"started_at,omitempty"`
	EndedAt              string `json:"ended_at,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
	AutoStart            bool   `json:"auto_start,omitempty"`
	GamePointTableID     *int64 `json:"game_point_table_id,omitempty"`
	DiscordGuildID       string `json:"discord_guild_id,omitempty"`
	DiscordTextChannelID string `json:"discord_text_channel_id,omitempty"`
}

// IsFull reports whether the contest reached its team capacity. A contest without capacity is never full
func (c Contest) IsFull() bool {
	return c.MaxTeamCount > 0 && c.CurrentTeamCount >= c.MaxTeamCount
}

// CreateContestRequest is the body of POST /contests
type CreateContestRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description,omitempty"`
	ContestType          string `json:"contest_type"`
	GameType             string `json:"game_type,omitempty"`
	MaxTeamCount         int    `json:"max_team_count,omitempty"`
	TotalTeamMember      int    `json:"total_team_member,omitempty"`
	TotalPoint           int    `json:"total_point,omitempty"`
	Thumbnail            string `json:"thumbnail,omitempty"`
	StartedAt            string `json:"started_at,omitempty"`
	EndedAt              string `json:"ended_at,omitempty"`
	AutoStart            bool   `json:"auto_start,omitempty"`
	GamePointTableID     *int64 `json:"game_point_table_id,omitempty"`
	DiscordGuildID       string `json:"discord_guild_id,omitempty"`
	DiscordTextChannelID string `json:"discord_text_channel_id,omitempty"`
}

// TeamMember is a confirmed member of a contest team
type TeamMember struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Tag      string `json:"tag,omitempty"`
	IsLeader bool   `json:"is_leader,omitempty"`
}

// Team is the requesting user's team for a contest
type Team struct {
	TeamID    int64        `json:"team_id,omitempty"`
	ContestID int64        `json:"contest_id,omitempty"`
	Name      string       `json:"name,omitempty"`
	Members   []TeamMember `json:"members"`
}

// MemberIDs returns the set of user ids on the team. A nil team (no team yet) gives an empty set
func (t *Team) MemberIDs() map[int64]bool {
	ids := make(map[int64]bool)
	if t == nil {
		return ids
	}
	for _, m := range t.Members {
		ids[m.UserID] = true
	}
	return ids
}

// Candidate is a contest participant listed by GET /contests/{id}/members
type Candidate struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Tag        string `json:"tag"`
	Point      int    `json:"point"`
	Rank       *int   `json:"rank,omitempty"`
	JoinDate   string `json:"join_date,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	ProfileKey string `json:"profile_key,omitempty"`
}

// Page is the paginated list envelope used by all list endpoints. Page index is 1-based
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// PointCalculation is the response for GET /contests/{id}/valorant-point
type PointCalculation struct {
	UserID             int64  `json:"user_id"`
	RiotName           string `json:"riot_name"`
	RiotTag            string `json:"riot_tag"`
	CurrentTierPatched string `json:"current_tier_patched"`
	CurrentTierPoint   int    `json:"current_tier_point"`
	PeakTierPatched    string `json:"peak_tier_patched"`
	PeakTierPoint      int    `json:"peak_tier_point"`
	FinalPoint         int    `json:"final_point"`
	RefreshNeeded      bool   `json:"refresh_needed"`
	RefreshMessage     string `json:"refresh_message,omitempty"`
}

// ScoreTable maps each of the 25 rank tiers to a point value
type ScoreTable map[string]int

// ScoreTableCreated is the response for POST /valorant/score-tables
type ScoreTableCreated struct {
	ScoreTableID int64 `json:"score_table_id"`
}

// ValorantInfo is the linked rank account of the current user
type ValorantInfo struct {
	Region             string `json:"region"`
	RiotName           string `json:"riot_name"`
	RiotTag            string `json:"riot_tag"`
	CurrentTier        int    `json:"current_tier"`
	CurrentTierPatched string `json:"current_tier_patched"`
	PeakTier           int    `json:"peak_tier"`
	PeakTierPatched    string `json:"peak_tier_patched"`
	RankingInTier      int    `json:"ranking_in_tier"`
	Elo                int    `json:"elo"`
	RefreshNeeded      bool   `json:"refresh_needed"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// LastUpdated parses UpdatedAt. The second return value is false when the account has never been refreshed
// or the timestamp cannot be read
func (v ValorantInfo) LastUpdated() (time.Time, bool) {
	if v.UpdatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RegisterValorantRequest is the body of POST /users/valorant
type RegisterValorantRequest struct {
	Region   string `json:"region"`
	RiotName string `json:"riot_name"`
	RiotTag  string `json:"riot_tag"`
}
