/* avatar.go
 * Contains the avatar resolution for contest candidates
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gamers-bot/api/shared"
)

const avatarCDN = "https://cdn.discordapp.com/avatars/%s/%s.png"

// Avatar is either an image URL or, when there is none, the initial glyph to draw instead
type Avatar struct {
	URL     string
	Initial string
}

// ResolveAvatar picks the candidate's avatar by precedence: an absolute URL in the avatar field, then the CDN
// URL composed from profile key and avatar hash, then the first letter of the username
func ResolveAvatar(c shared.Candidate) Avatar {
	avatar := strings.TrimSpace(c.Avatar)
	if strings.HasPrefix(avatar, "https://") || strings.HasPrefix(avatar, "http://") {
		return Avatar{URL: avatar}
	}
	if avatar != "" && c.ProfileKey != "" {
		return Avatar{URL: fmt.Sprintf(avatarCDN, c.ProfileKey, avatar)}
	}
	return Avatar{Initial: initial(c.Username)}
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}
