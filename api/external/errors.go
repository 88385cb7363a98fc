/* errors.go
 * Contains the structured error returned for non 2xx api responses
 * Authors: Gamers Bot contributors
 */

package external

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the platform answers with a non 2xx status
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an api 404
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an api 401. Expired sessions are handled by the auth service, callers only
// need to tell the user to log in again
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// ServerMessage returns the message the server sent with an error, or "" when there is none
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
