/* keys.go
 * Contains the cache key builders for every query
 * Authors: Gamers Bot contributors
 */

package query

import "fmt"

func ContestKey(contestID int64) string {
	return fmt.Sprintf("contest:%d", contestID)
}

func ApplicationKey(contestID int64, userID string) string {
	return fmt.Sprintf("application:%d:%s", contestID, userID)
}

func ApplicationPrefix(contestID int64) string {
	return fmt.Sprintf("application:%d:", contestID)
}

func TeamKey(contestID int64, userID string) string {
	return fmt.Sprintf("team:%d:%s", contestID, userID)
}

func TeamPrefix(contestID int64) string {
	return fmt.Sprintf("team:%d:", contestID)
}

func MembersKey(contestID int64, page int) string {
	return fmt.Sprintf("members:%d:%d", contestID, page)
}

func MembersPrefix(contestID int64) string {
	return fmt.Sprintf("members:%d:", contestID)
}

func ContestsKey(page int) string {
	return fmt.Sprintf("contests:%d", page)
}

func ValorantKey(userID string) string {
	return fmt.Sprintf("valorant:%s", userID)
}

// Dependents returns the keys an apply or cancel changes. The application status and the contest participant
// counters are not independently consistent and are always refreshed together
func Dependents(contestID int64, userID string) []string {
	return []string{ApplicationKey(contestID, userID), ContestKey(contestID)}
}
