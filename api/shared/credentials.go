/* credentials.go
 * Contains the platform credentials held on behalf of a discord user. Credentials are issued by the platform's auth
 * service and handed to us through the web server, this package never creates or refreshes them
 * Authors: Gamers Bot contributors
 */

package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials are the platform access and refresh tokens for one discord user
type Credentials struct {
	AccessToken  string `json:"access_token" bson:"access_token"`
	RefreshToken string `json:"refresh_token" bson:"refresh_token"`
}

// IsLoggedIn reports whether the credentials represent an authenticated session.
// Preconditions: Receives the current time
// Postconditions: Returns true when both tokens are present and the access token has not passed its `exp` claim.
// Tokens that are not JWTs or carry no `exp` are taken at face value, validation is the backend's job
func (c Credentials) IsLoggedIn(now time.Time) bool {
	if c.AccessToken == "" || c.RefreshToken == "" {
		return false
	}
	exp, ok := c.AccessTokenExpiry()
	if !ok {
		return true
	}
	return now.Before(exp)
}

// AccessTokenExpiry reads the `exp` claim of the access token without verifying its signature
func (c Credentials) AccessTokenExpiry() (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
