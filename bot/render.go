/* render.go
 * Contains the functions that turn api results into discord messages and embeds
 * Authors: Gamers Bot contributors
 */

package bot

import (
	"fmt"
	"sort"
	"strings"

	"gamers-bot/api/api"
	"gamers-bot/api/logic"
	"gamers-bot/api/shared"

	"github.com/bwmarrin/discordgo"
)

const (
	colourPrimary     = 0x5865F2
	colourDestructive = 0xED4245
	colourSecondary   = 0x99AAB5
	colourSuccess     = 0x57F287
)

func variantColour(v logic.Variant) int {
	switch v {
	case logic.VariantDestructive:
		return colourDestructive
	case logic.VariantSecondary:
		return colourSecondary
	default:
		return colourPrimary
	}
}

// contestEmbed renders a contest with its primary action in the footer
func contestEmbed(view api.ContestView) *discordgo.MessageEmbed {
	c := view.Contest
	fields := []*discordgo.MessageEmbedField{
		{Name: "Status", Value: orDash(c.ContestStatus), Inline: true},
		{Name: "Type", Value: orDash(c.ContestType), Inline: true},
		{Name: "Teams", Value: teamCount(c), Inline: true},
	}
	if c.StartedAt != "" || c.EndedAt != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Schedule", Value: fmt.Sprintf("%s → %s", orDash(c.StartedAt), orDash(c.EndedAt))})
	}
	if view.LoggedIn {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Your application", Value: string(view.Application.Status)})
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("#%d %s", c.ContestID, c.Title),
		Description: c.Description,
		Color:       variantColour(view.Action.Variant),
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: actionHint(c.ContestID, view.Action)},
	}
	if c.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: c.Thumbnail}
	}
	return embed
}

func actionHint(contestID int64, action logic.Action) string {
	switch action.Kind {
	case logic.ShowJoined:
		return action.Prompt
	case logic.ConfirmCancel:
		return fmt.Sprintf("%s: $join %d confirm", action.Label, contestID)
	default:
		return fmt.Sprintf("%s: $join %d", action.Label, contestID)
	}
}

func teamCount(c shared.Contest) string {
	if c.MaxTeamCount > 0 {
		return fmt.Sprintf("%d/%d", c.CurrentTeamCount, c.MaxTeamCount)
	}
	return fmt.Sprintf("%d", c.CurrentTeamCount)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// contestList renders one page of the contest list
func contestList(page shared.Page[shared.Contest], current int) string {
	if len(page.Data) == 0 {
		return "No contests found"
	}
	var res strings.Builder
	for _, c := range page.Data {
		res.WriteString(fmt.Sprintf("`#%d` **%s** (%s, %s teams)\n", c.ContestID, c.Title, orDash(c.ContestStatus), teamCount(c)))
	}
	res.WriteString(pageFooter(current, logic.TotalPages(page.TotalPages), "$contests"))
	return res.String()
}

func pageFooter(page int, total int, command string) string {
	footer := fmt.Sprintf("Page %d/%d", page, total)
	if next := logic.NextPage(page, total); next != page {
		footer += fmt.Sprintf(", next: `%s %d`", command, next)
	}
	return footer
}

// gateMessage describes a point gate to the user, with the next command to run
func gateMessage(contestID int64, snap logic.GateSnapshot, remediationURL string) string {
	var res strings.Builder
	switch snap.State {
	case logic.GateCalculating:
		res.WriteString("Calculating your points...\n")
	case logic.GateSuccess:
		if snap.Result != nil {
			r := snap.Result
			res.WriteString(fmt.Sprintf("%s#%s: current %s (%d), peak %s (%d)\n", r.RiotName, r.RiotTag,
				r.CurrentTierPatched, r.CurrentTierPoint, r.PeakTierPatched, r.PeakTierPoint))
			res.WriteString(fmt.Sprintf("Final points: **%d**\n", r.FinalPoint))
			if r.RefreshNeeded && r.RefreshMessage != "" {
				res.WriteString(r.RefreshMessage + "\n")
			}
		}
	case logic.GateFailure:
		res.WriteString(snap.Failure + "\n")
		res.WriteString(fmt.Sprintf("Check your account at %s then run `$close %d` and `$join %d` to try again\n", remediationURL, contestID, contestID))
		return res.String()
	}

	if snap.CanCalculate {
		res.WriteString(fmt.Sprintf("%s: `$points %d`\n", snap.Label, contestID))
	} else if snap.Label == logic.LabelNotConfigured {
		res.WriteString(snap.Label + "\n")
	}
	if snap.CanConfirm {
		res.WriteString(fmt.Sprintf("Submit your application: `$apply %d`, or `$close %d` to stop", contestID, contestID))
	}
	return strings.TrimSpace(res.String())
}

// inviteList renders a resolved invite page
func inviteList(contestID int64, view logic.InviteView) string {
	if view.Loading {
		return "Loading members..."
	}
	if len(view.Rows) == 0 {
		return "No members found"
	}
	var res strings.Builder
	for _, row := range view.Rows {
		state := "invite"
		if row.IsAlreadyMember {
			state = "on your team"
		}
		rank := "-"
		if row.Candidate.Rank != nil {
			rank = fmt.Sprintf("%d", *row.Candidate.Rank)
		}
		res.WriteString(fmt.Sprintf("`%d` %s**%s#%s** %d pts, rank %s: %s\n", row.Candidate.UserID, avatarBadge(row.Avatar),
			row.Candidate.Username, row.Candidate.Tag, row.Candidate.Point, rank, state))
	}
	res.WriteString(pageFooter(view.Page, view.TotalPages, fmt.Sprintf("$members %d", contestID)))
	return res.String()
}

// avatarBadge shows the initial for members without a profile picture
func avatarBadge(a logic.Avatar) string {
	if a.URL != "" {
		return ""
	}
	return "[" + a.Initial + "] "
}

// scoreTableEmbed renders a created score table with its id
func scoreTableEmbed(id int64, table shared.ScoreTable) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(logic.Tiers))
	for _, tier := range logic.Tiers {
		fields = append(fields, &discordgo.MessageEmbedField{Name: tier, Value: fmt.Sprintf("%d", table[tier]), Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Score table %d", id),
		Description: "Use this id as the contest's game point table",
		Color:       colourSuccess,
		Fields:      fields,
	}
}

func valorantMessage(status api.ValorantStatus) string {
	info := status.Info
	var res strings.Builder
	res.WriteString(fmt.Sprintf("**%s#%s** (%s)\n", info.RiotName, info.RiotTag, strings.ToUpper(info.Region)))
	res.WriteString(fmt.Sprintf("Current: %s, %d rr\nPeak: %s\n", orDash(info.CurrentTierPatched), info.RankingInTier, orDash(info.PeakTierPatched)))
	if status.CanRefresh {
		res.WriteString("Rank refresh available: `$valorant refresh`")
	} else {
		res.WriteString(fmt.Sprintf("Next refresh: %s", status.NextRefresh.UTC().Format("2006-01-02 15:04 MST")))
	}
	return res.String()
}

func applicationList(contestID int64, apps []shared.Application) string {
	if len(apps) == 0 {
		return "No applications yet"
	}
	sorted := append([]shared.Application(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt < sorted[j].CreatedAt })

	var res strings.Builder
	for _, app := range sorted {
		res.WriteString(fmt.Sprintf("`%d` %s#%s: %s\n", app.UserID, app.Username, app.Tag, app.Status.Normalize()))
	}
	res.WriteString(fmt.Sprintf("Decide with `$accept %d <user_id>` or `$reject %d <user_id>`", contestID, contestID))
	return res.String()
}
