/* models.go
 * Contains the server configuration and the request and response bodies of the HTTP surface
 * Authors: Gamers Bot contributors
 */

package web

import (
	"gamers-bot/api/api"
	"gamers-bot/api/logic"

	"github.com/rs/zerolog"
)

// SessionSecretHeader carries the secret shared with the auth service
const SessionSecretHeader = "X-Session-Secret"

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
	// SessionSecret must be sent by the auth service when it registers a session. Empty disables /sessions
	SessionSecret string
	Logger        zerolog.Logger
}

// Server is the HTTP server that handles webhook and session requests
type Server struct {
	api    *api.API
	secret string
	logger zerolog.Logger
}

// ContestEvent is the body of POST /webhooks/contest
type ContestEvent struct {
	ContestID int64  `json:"contest_id" binding:"required,gt=0"`
	Event     string `json:"event" binding:"required,oneof=updated deleted application team"`
}

// SessionRequest is the body of POST /sessions
type SessionRequest struct {
	DiscordUserID string `json:"discord_user_id" binding:"required"`
	AccessToken   string `json:"access_token" binding:"required"`
	RefreshToken  string `json:"refresh_token" binding:"required"`
}

// ActionResponse is the body of GET /contests/:id/action
type ActionResponse struct {
	ContestID int64        `json:"contest_id"`
	LoggedIn  bool         `json:"logged_in"`
	Status    string       `json:"status"`
	Action    logic.Action `json:"action"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
