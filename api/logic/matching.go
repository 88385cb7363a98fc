/* matching.go
 * Contains the fuzzy name matching used for user supplied names, e.g. candidate usernames and regions
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchName finds the name in names that input refers to.
// Preconditions: Receives the user input and the list of valid names
// Postconditions: Returns the original (not lower cased) name and true. An exact case insensitive match wins,
// otherwise a fuzzy match is used only when its distance is strictly better than every other match. Returns false
// when nothing matches or the best matches tie
func MatchName(input string, names []string) (string, bool) {
	if name, ok := exactName(input, names); ok {
		return name, true
	}
	ranked := RankNames(input, names)
	if len(ranked) == 0 {
		return "", false
	}
	if len(ranked) > 1 && ranked[0].Distance == ranked[1].Distance {
		return "", false
	}
	return ranked[0].Name, true
}

// NameRank is a fuzzy matched name and its distance to the input
type NameRank struct {
	Name     string
	Distance int
}

// RankNames returns every name input fuzzy matches, closest first. Names that only differ in case are listed once
func RankNames(input string, names []string) []NameRank {
	lowerInput := strings.ToLower(strings.TrimSpace(input))
	if lowerInput == "" {
		return nil
	}

	lookup := make(map[string]string, len(names))
	lowerNames := make([]string, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(name)
		if _, seen := lookup[lower]; !seen {
			lookup[lower] = name
			lowerNames = append(lowerNames, lower)
		}
	}

	ranks := fuzzy.RankFind(lowerInput, lowerNames)
	sort.Stable(ranks)
	res := make([]NameRank, 0, len(ranks))
	for _, r := range ranks {
		res = append(res, NameRank{Name: lookup[r.Target], Distance: r.Distance})
	}
	return res
}

func exactName(input string, names []string) (string, bool) {
	lowerInput := strings.ToLower(strings.TrimSpace(input))
	if lowerInput == "" {
		return "", false
	}
	for _, name := range names {
		if strings.ToLower(name) == lowerInput {
			return name, true
		}
	}
	return "", false
}
