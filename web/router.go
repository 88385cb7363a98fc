/* router.go
 * Contains the gin engine, its middleware and the route handlers
 * Authors: Gamers Bot contributors
 */

package web

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gamers-bot/api/api"
	"gamers-bot/api/external"
	"gamers-bot/api/shared"
	"gamers-bot/api/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDKey = "request_id"

// NewServer creates a Server.
// Preconditions: Receives the api, the session secret shared with the auth service and a logger
// Postconditions: Returns the server or an error when the api is missing
func NewServer(apiPtr *api.API, secret string, logger zerolog.Logger) (*Server, error) {
	if apiPtr == nil {
		return nil, fmt.Errorf("api is required but none was provided")
	}
	return &Server{api: apiPtr, secret: secret, logger: logger}, nil
}

// Router builds the gin engine with every route bound to s
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestID(), s.requestLogger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/webhooks/contest", s.contestWebhookHandler)

	sessions := r.Group("/sessions", s.requireSecret())
	{
		sessions.POST("", s.createSessionHandler)
		sessions.DELETE("/:user", s.deleteSessionHandler)
	}

	r.GET("/contests/:id/action", s.requireSecret(), s.contestActionHandler)
	return r
}

// requestID tags each request with the caller's X-Request-ID or a new uuid
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

// requireSecret guards the routes that act on a stored session
func (s *Server) requireSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(SessionSecretHeader)
		if s.secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(s.secret)) != 1 {
			s.abort(c, http.StatusUnauthorized, "invalid session secret")
			return
		}
		c.Next()
	}
}

func (s *Server) abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message, RequestID: c.GetString(requestIDKey)})
}

// contestWebhookHandler receives change notifications from the platform and invalidates the contest's queries so
// every surface that did not cause the change sees it on the next read
func (s *Server) contestWebhookHandler(c *gin.Context) {
	var event ContestEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		s.abort(c, http.StatusBadRequest, "invalid contest event")
		return
	}

	if err := s.api.HandleContestEvent(c.Request.Context(), event.ContestID, event.Event); err != nil {
		s.logger.Error().Err(err).Int64("contest_id", event.ContestID).Msg("contest invalidation failed")
		s.abort(c, http.StatusInternalServerError, "invalidation failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createSessionHandler(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, "invalid session")
		return
	}

	creds := shared.Credentials{AccessToken: req.AccessToken, RefreshToken: req.RefreshToken}
	if err := s.api.Login(c.Request.Context(), req.DiscordUserID, creds); err != nil {
		s.logger.Error().Err(err).Str("user_id", req.DiscordUserID).Msg("storing session failed")
		s.abort(c, http.StatusInternalServerError, "could not store session")
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) deleteSessionHandler(c *gin.Context) {
	userID := c.Param("user")
	err := s.api.Logout(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNoSession) {
		s.abort(c, http.StatusNotFound, "no session for user")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("deleting session failed")
		s.abort(c, http.StatusInternalServerError, "could not delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

// contestActionHandler returns the derived primary action of a contest for a discord user
func (s *Server) contestActionHandler(c *gin.Context) {
	contestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || contestID <= 0 {
		s.abort(c, http.StatusBadRequest, "invalid contest id")
		return
	}
	user := shared.User{UserID: c.Query("user")}

	view, err := s.api.ContestView(c.Request.Context(), user, contestID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrNotLoggedIn) {
			status = http.StatusUnauthorized
		} else if external.IsNotFound(err) {
			status = http.StatusNotFound
		}
		s.abort(c, status, api.UserMessage(err, "could not load contest"))
		return
	}

	c.JSON(http.StatusOK, ActionResponse{
		ContestID: contestID,
		LoggedIn:  view.LoggedIn,
		Status:    string(view.Application.Status),
		Action:    view.Action,
	})
}
