/* invite.go
 * Contains the team invitation resolver. Eligibility is recomputed from the team roster and the candidate page on
 * every call and is never stored
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"strconv"
	"strings"

	"gamers-bot/api/shared"
)

// InviteRow is a candidate with its derived membership flag
type InviteRow struct {
	Candidate       shared.Candidate
	IsAlreadyMember bool
	Eligible        bool
	Avatar          Avatar
}

// InviteView is the resolver result for one page
type InviteView struct {
	// Loading is set until both the team and the candidate page are ready. Rows is empty while loading
	Loading    bool
	Rows       []InviteRow
	Page       int
	TotalPages int
}

// Readiness reports which sources of an invite view have loaded
type Readiness struct {
	TeamLoaded       bool
	CandidatesLoaded bool
}

// ResolveInvitations derives the per candidate invite eligibility.
// Preconditions: Receives the team member id set (empty when the team lookup was a 404), a candidate page and
// the readiness of both sources
// Postconditions: Returns a loading view when either source is not ready. Otherwise every row has
// IsAlreadyMember == (user_id in team) and Eligible == !IsAlreadyMember
func ResolveInvitations(teamMembers map[int64]bool, page shared.Page[shared.Candidate], ready Readiness) InviteView {
	view := InviteView{Page: ClampPage(page.Page, page.TotalPages), TotalPages: TotalPages(page.TotalPages)}

	if !ready.TeamLoaded || !ready.CandidatesLoaded {
		view.Loading = true
		return view
	}

	view.Rows = make([]InviteRow, 0, len(page.Data))
	for _, candidate := range page.Data {
		member := teamMembers[candidate.UserID]
		view.Rows = append(view.Rows, InviteRow{
			Candidate:       candidate,
			IsAlreadyMember: member,
			Eligible:        !member,
			Avatar:          ResolveAvatar(candidate),
		})
	}
	return view
}

// FindCandidate picks the row a user meant: a numeric input is a user id, anything else must be a case insensitive
// username on the page. A row is only returned on an exact match since the caller sends an invite with it,
// otherwise the fuzzy matched usernames are returned as suggestions, closest first
func FindCandidate(rows []InviteRow, input string) (InviteRow, []string, bool) {
	input = strings.TrimSpace(input)
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		for _, row := range rows {
			if row.Candidate.UserID == id {
				return row, nil, true
			}
		}
		return InviteRow{}, nil, false
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Candidate.Username)
	}
	if name, ok := exactName(input, names); ok {
		for _, row := range rows {
			if row.Candidate.Username == name {
				return row, nil, true
			}
		}
	}

	var suggestions []string
	for _, r := range RankNames(input, names) {
		suggestions = append(suggestions, r.Name)
	}
	return InviteRow{}, suggestions, false
}
