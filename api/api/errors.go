/* errors.go
 * Contains the errors returned by the api facade and the mapping from errors to the text shown to users
 * Authors: Gamers Bot contributors
 */

package api

import (
	"errors"

	"gamers-bot/api/external"
	"gamers-bot/api/logic"
)

var (
	ErrNotLoggedIn       = errors.New("you need to log in first")
	ErrNoApplication     = errors.New("no application is open for this contest")
	ErrGateClosed        = errors.New("calculate your points before applying")
	ErrActionUnavailable = errors.New("this action is not available for your application status")
	ErrAlreadyMember     = errors.New("user is already a member of your team")
	ErrRefreshTooSoon    = errors.New("rank information can only be refreshed once every 24 hours")
)

// userFacing are errors whose text can be shown as is
var userFacing = []error{
	ErrNotLoggedIn,
	ErrNoApplication,
	ErrGateClosed,
	ErrActionUnavailable,
	ErrAlreadyMember,
	ErrRefreshTooSoon,
	logic.ErrNoScoreTable,
	logic.ErrGateBusy,
	logic.ErrStaleCalculation,
}

// UserMessage returns the text to show for err: our own errors and validation errors as they are, api errors with
// the message the server sent, and fallback for everything else
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	var verr *logic.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if external.IsUnauthorized(err) {
		return ErrNotLoggedIn.Error()
	}
	if msg := external.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
