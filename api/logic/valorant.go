/* valorant.go
 * Contains the checks for the linked rank account: registration input and the refresh cool down
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"strings"
	"time"

	"gamers-bot/api/shared"
)

// Regions are the supported rank account regions
var Regions = []string{"ap", "br", "eu", "kr", "latam", "na"}

// RefreshInterval is how long a user has to wait between two refreshes
const RefreshInterval = 24 * time.Hour

// CanRefresh reports whether a refresh is allowed. The elapsed time is truncated to whole hours and must be at
// least 24. An account that was never refreshed can always be refreshed
func CanRefresh(updatedAt time.Time, ok bool, now time.Time) bool {
	if !ok {
		return true
	}
	hours := int(now.Sub(updatedAt) / time.Hour)
	return hours >= int(RefreshInterval/time.Hour)
}

// NextRefresh returns when the next refresh becomes available
func NextRefresh(updatedAt time.Time) time.Time {
	return updatedAt.Add(RefreshInterval)
}

// CanRefreshInfo applies CanRefresh to the account's updated_at
func CanRefreshInfo(info shared.ValorantInfo, now time.Time) bool {
	updatedAt, ok := info.LastUpdated()
	return CanRefresh(updatedAt, ok, now)
}

// ValidateRegistration normalises and checks a register request before it is sent. The region may be
// abbreviated or misspelled as long as it matches one region
func ValidateRegistration(req shared.RegisterValorantRequest) (shared.RegisterValorantRequest, error) {
	invalid := make(map[string]string)

	region, ok := MatchName(strings.ToLower(strings.TrimSpace(req.Region)), Regions)
	if !ok {
		invalid["region"] = "must be one of " + strings.Join(Regions, ", ")
	}
	req.Region = region

	req.RiotName = strings.TrimSpace(req.RiotName)
	if req.RiotName == "" {
		invalid["riot_name"] = "required"
	}
	req.RiotTag = strings.TrimPrefix(strings.TrimSpace(req.RiotTag), "#")
	if req.RiotTag == "" {
		invalid["riot_tag"] = "required"
	}

	if len(invalid) > 0 {
		return req, &ValidationError{Fields: invalid}
	}
	return req, nil
}
