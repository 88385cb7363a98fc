/* handlers.go
 * Contains testable handler methods that accept the DiscordSession interface. Every handler replies exactly once
 * on each path, errors are logged and shown through api.UserMessage
 * Authors: Gamers Bot contributors
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gamers-bot/api/api"
	"gamers-bot/api/logic"
	"gamers-bot/api/shared"
)

const genericError = "An error occured, please try again later"

// helpHandler handles the $help command
func (b *Bot) helpHandler(_ context.Context, session DiscordSession, cmd command) {
	var res strings.Builder
	res.WriteString("Gamers Bot\n")
	res.WriteString("`$contests [page]`: lists contests\n")
	res.WriteString("`$contest <id>`: shows a contest and what you can do with it\n")
	res.WriteString("`$join <id> [confirm]`: runs the contest action. Applying opens an application, cancelling and logging in need `confirm`\n")
	res.WriteString("`$points <id>`: calculates your points for an open application\n")
	res.WriteString("`$apply <id>`: submits an open application once your points are calculated\n")
	res.WriteString("`$close <id>`: closes an open application without applying\n")
	res.WriteString("`$members <id> [page]`: lists contest members you can invite\n")
	res.WriteString("`$invite <id> <name|user_id> [page]`: invites a member to your team. Names with spaces need to be encased in \" (e.g. \"Hide on bush\")\n")
	res.WriteString("`$valorant`: shows your linked rank account. `$valorant link <region> <name> <tag>`, `$valorant refresh` and `$valorant unlink` manage it\n")
	res.WriteString("`$scoretable [tier=points ...]`: creates a score table, tiers you leave out get the default points\n")
	res.WriteString("`$applications <id>`, `$accept <id> <user_id>`, `$reject <id> <user_id>`: manage applications to a contest you run\n")
	res.WriteString("`$password <new> <confirm>`: changes your password, direct messages only\n")
	b.reply(session, cmd, res.String())
}

// contestsHandler handles $contests [page]
func (b *Bot) contestsHandler(ctx context.Context, session DiscordSession, cmd command) {
	page := pageArg(cmd, 0)
	contests, err := b.APIPtr.ListContests(ctx, cmd.user, page)
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching contests")
		return
	}
	b.reply(session, cmd, contestList(contests, contests.Page))
}

// contestHandler handles $contest <id>
func (b *Bot) contestHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$contest <id>`")
		return
	}
	view, err := b.APIPtr.ContestView(ctx, cmd.user, contestID)
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching the contest")
		return
	}
	b.replyEmbed(session, cmd, contestEmbed(view))
}

// joinHandler handles $join <id> [confirm] by running the contest's derived action
func (b *Bot) joinHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$join <id> [confirm]`")
		return
	}
	confirmed := len(cmd.args) > 1 && strings.EqualFold(cmd.args[1], "confirm")

	view, err := b.APIPtr.ContestView(ctx, cmd.user, contestID)
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching the contest")
		return
	}

	action := view.Action
	switch action.Kind {
	case logic.PromptLogin:
		if !confirmed {
			b.reply(session, cmd, fmt.Sprintf("%s Reply `$join %d confirm`", action.Prompt, contestID))
			return
		}
		b.reply(session, cmd, fmt.Sprintf("Log in at %s", b.link(action.RedirectPath)))

	case logic.OpenApplication:
		app, err := b.APIPtr.OpenApplication(ctx, cmd.user, contestID)
		if err != nil {
			b.fail(session, cmd, err, "An error occured opening the application")
			return
		}
		b.reply(session, cmd, fmt.Sprintf("Application to **%s** opened\n%s", app.Contest.Title,
			gateMessage(contestID, app.Gate.Snapshot(), b.link(logic.RemediationPath))))

	case logic.ConfirmCancel:
		if !confirmed {
			b.reply(session, cmd, fmt.Sprintf("%s Reply `$join %d confirm`", action.Prompt, contestID))
			return
		}
		if err := b.APIPtr.CancelApplication(ctx, cmd.user, contestID); err != nil {
			b.fail(session, cmd, err, "An error occured cancelling the application")
			return
		}
		b.reply(session, cmd, fmt.Sprintf("%s's application to **%s** has been cancelled", cmd.user.Username, view.Contest.Title))

	case logic.ShowJoined:
		b.reply(session, cmd, action.Prompt)
	}
}

// pointsHandler handles $points <id>
func (b *Bot) pointsHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$points <id>`")
		return
	}
	snap, err := b.APIPtr.CalculatePoints(ctx, cmd.user, contestID)
	if err != nil && snap.State != logic.GateFailure {
		b.fail(session, cmd, err, "An error occured calculating your points")
		return
	}
	if err != nil {
		b.Logger.Info().Err(err).Str("user_id", cmd.user.UserID).Int64("contest_id", contestID).Msg("point calculation failed")
	}
	b.reply(session, cmd, gateMessage(contestID, snap, b.link(snap.Remediation)))
}

// applyHandler handles $apply <id>
func (b *Bot) applyHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$apply <id>`")
		return
	}
	if err := b.APIPtr.Apply(ctx, cmd.user, contestID); err != nil {
		b.fail(session, cmd, err, "An error occured submitting the application")
		return
	}
	b.reply(session, cmd, fmt.Sprintf("%s's application has been submitted", cmd.user.Username))
}

// closeHandler handles $close <id>
func (b *Bot) closeHandler(_ context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$close <id>`")
		return
	}
	if _, open := b.APIPtr.Application(cmd.user, contestID); !open {
		b.reply(session, cmd, api.ErrNoApplication.Error())
		return
	}
	b.APIPtr.CloseApplication(cmd.user, contestID)
	b.reply(session, cmd, "Application closed")
}

// membersHandler handles $members <id> [page]
func (b *Bot) membersHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$members <id> [page]`")
		return
	}
	view, err := b.APIPtr.InvitePage(ctx, cmd.user, contestID, pageArg(cmd, 1))
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching members")
		return
	}
	b.reply(session, cmd, inviteList(contestID, view))
}

// inviteHandler handles $invite <id> <name|user_id> [page]. Names are matched against the given members page
func (b *Bot) inviteHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok || len(cmd.args) < 2 {
		b.reply(session, cmd, "Usage: `$invite <id> <name|user_id> [page]`")
		return
	}
	view, err := b.APIPtr.InvitePage(ctx, cmd.user, contestID, pageArg(cmd, 2))
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching members")
		return
	}
	row, suggestions, found := logic.FindCandidate(view.Rows, cmd.args[1])
	if !found && len(suggestions) > 0 {
		b.reply(session, cmd, fmt.Sprintf("No member is named %s. Did you mean: %s? Run `$invite %d <user_id>` with their id from `$members %d %d`",
			cmd.args[1], strings.Join(suggestions, ", "), contestID, contestID, view.Page))
		return
	}
	if !found {
		b.reply(session, cmd, fmt.Sprintf("Could not find %s on page %d. Use `$members %d` to list members", cmd.args[1], view.Page, contestID))
		return
	}
	if !row.Eligible {
		b.reply(session, cmd, fmt.Sprintf("%s is already on your team", row.Candidate.Username))
		return
	}

	if err := b.APIPtr.Invite(ctx, cmd.user, contestID, row.Candidate.UserID); err != nil {
		b.fail(session, cmd, err, "An error occured sending the invite")
		return
	}
	b.reply(session, cmd, fmt.Sprintf("Invite sent to %s", row.Candidate.Username))
}

// valorantHandler handles $valorant [link <region> <name> <tag> | refresh | unlink]
func (b *Bot) valorantHandler(ctx context.Context, session DiscordSession, cmd command) {
	sub := ""
	if len(cmd.args) > 0 {
		sub = strings.ToLower(cmd.args[0])
	}

	switch sub {
	case "":
		status, err := b.APIPtr.ValorantInfo(ctx, cmd.user)
		if err != nil {
			b.fail(session, cmd, err, logic.FailureFallback)
			return
		}
		b.reply(session, cmd, valorantMessage(status))

	case "link":
		if len(cmd.args) < 4 {
			b.reply(session, cmd, fmt.Sprintf("Usage: `$valorant link <region> <name> <tag>`, regions: %s", strings.Join(logic.Regions, ", ")))
			return
		}
		status, err := b.APIPtr.RegisterValorant(ctx, cmd.user, shared.RegisterValorantRequest{
			Region:   cmd.args[1],
			RiotName: cmd.args[2],
			RiotTag:  cmd.args[3],
		})
		if err != nil {
			b.fail(session, cmd, err, "An error occured linking your account")
			return
		}
		b.reply(session, cmd, "Account linked\n"+valorantMessage(status))

	case "refresh":
		status, err := b.APIPtr.RefreshValorant(ctx, cmd.user)
		if errors.Is(err, api.ErrRefreshTooSoon) {
			b.reply(session, cmd, fmt.Sprintf("%s\nNext refresh: %s", err.Error(), status.NextRefresh.UTC().Format("2006-01-02 15:04 MST")))
			return
		}
		if err != nil {
			b.fail(session, cmd, err, "An error occured refreshing your rank")
			return
		}
		b.reply(session, cmd, "Rank refreshed\n"+valorantMessage(status))

	case "unlink":
		if err := b.APIPtr.UnlinkValorant(ctx, cmd.user); err != nil {
			b.fail(session, cmd, err, "An error occured unlinking your account")
			return
		}
		b.reply(session, cmd, "Account unlinked")

	default:
		b.reply(session, cmd, "Usage: `$valorant [link <region> <name> <tag> | refresh | unlink]`")
	}
}

// scoreTableHandler handles $scoretable [tier=points ...]
func (b *Bot) scoreTableHandler(ctx context.Context, session DiscordSession, cmd command) {
	form, err := logic.ParseScoreTableArgs(cmd.args)
	if err != nil {
		b.reply(session, cmd, fmt.Sprintf("%s. Tiers: %s", err.Error(), strings.Join(logic.Tiers, ", ")))
		return
	}
	table, err := form.Validate()
	if err != nil {
		b.fail(session, cmd, err, genericError)
		return
	}

	id, err := b.APIPtr.CreateScoreTable(ctx, cmd.user, form)
	if err != nil {
		b.fail(session, cmd, err, "An error occured creating the score table")
		return
	}
	b.replyEmbed(session, cmd, scoreTableEmbed(id, table))
}

// applicationsHandler handles $applications <id>
func (b *Bot) applicationsHandler(ctx context.Context, session DiscordSession, cmd command) {
	contestID, ok := contestArg(cmd, 0)
	if !ok {
		b.reply(session, cmd, "Usage: `$applications <id>`")
		return
	}
	apps, err := b.APIPtr.ListApplications(ctx, cmd.user, contestID)
	if err != nil {
		b.fail(session, cmd, err, "An error occured fetching applications")
		return
	}
	b.reply(session, cmd, applicationList(contestID, apps))
}

func (b *Bot) acceptHandler(ctx context.Context, session DiscordSession, cmd command) {
	b.decide(ctx, session, cmd, "accepted", b.APIPtr.AcceptApplication)
}

func (b *Bot) rejectHandler(ctx context.Context, session DiscordSession, cmd command) {
	b.decide(ctx, session, cmd, "rejected", b.APIPtr.RejectApplication)
}

func (b *Bot) decide(ctx context.Context, session DiscordSession, cmd command, verb string,
	fn func(ctx context.Context, user shared.User, contestID int64, applicantID int64) error) {
	contestID, ok := contestArg(cmd, 0)
	var applicantID int64
	var err error
	if ok && len(cmd.args) > 1 {
		applicantID, err = strconv.ParseInt(cmd.args[1], 10, 64)
	}
	if !ok || len(cmd.args) < 2 || err != nil {
		b.reply(session, cmd, fmt.Sprintf("Usage: `%s <id> <user_id>`", cmd.name))
		return
	}

	if err := fn(ctx, cmd.user, contestID, applicantID); err != nil {
		b.fail(session, cmd, err, "An error occured updating the application")
		return
	}
	b.reply(session, cmd, fmt.Sprintf("Application of user %d %s", applicantID, verb))
}

// passwordHandler handles $password <new> <confirm>. Passwords are never accepted in a guild channel
func (b *Bot) passwordHandler(ctx context.Context, session DiscordSession, cmd command) {
	if !cmd.direct {
		b.reply(session, cmd, "For your safety `$password` only works in a direct message")
		return
	}
	if len(cmd.args) < 2 {
		b.reply(session, cmd, "Usage: `$password <new> <confirm>`")
		return
	}
	if err := b.APIPtr.UpdatePassword(ctx, cmd.user, cmd.args[0], cmd.args[1]); err != nil {
		b.fail(session, cmd, err, "An error occured changing your password")
		return
	}
	b.reply(session, cmd, "Password changed")
}
