/* bot.go
 * Contains logic used for creating the bot and routing commands. Requires a discord bot token and APIPtr, both of
 * which are passed in from main.go. Command handlers live in handlers.go, message formatting in render.go
 * Authors: Gamers Bot contributors
 */

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamers-bot/api/api"
	"gamers-bot/api/shared"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
	"github.com/rs/zerolog"
)

const commandTimeout = 15 * time.Second

type Bot struct {
	BotToken string
	APIPtr   *api.API
	// WebURL is the platform front-end, used for login and profile links
	WebURL string
	Logger zerolog.Logger

	splitter splitter.Splitter
}

// NewBot creates a Bot.
// Preconditions: Receives a discord bot token, the api and the platform's web url
// Postconditions: Returns pointer to Bot, or error if the token or api is missing
func NewBot(botToken string, apiPtr *api.API, webURL string, logger zerolog.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("api is required but none was provided")
	}

	// we use splitter instead of strings.Fields so names that contain spaces e.g. "Hide on bush" stay one argument
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, fmt.Errorf("creating argument splitter: %w", err)
	}

	return &Bot{
		BotToken: botToken,
		APIPtr:   apiPtr,
		WebURL:   strings.TrimRight(webURL, "/"),
		Logger:   logger,
		splitter: spaceSplitter,
	}, nil
}

// command is a parsed chat command
type command struct {
	name    string
	args    []string
	user    shared.User
	channel string
	direct  bool
}

type handlerFunc func(ctx context.Context, session DiscordSession, cmd command)

func (b *Bot) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"$help":         b.helpHandler,
		"$contests":     b.contestsHandler,
		"$contest":      b.contestHandler,
		"$join":         b.joinHandler,
		"$points":       b.pointsHandler,
		"$apply":        b.applyHandler,
		"$close":        b.closeHandler,
		"$members":      b.membersHandler,
		"$invite":       b.inviteHandler,
		"$valorant":     b.valorantHandler,
		"$scoretable":   b.scoreTableHandler,
		"$applications": b.applicationsHandler,
		"$accept":       b.acceptHandler,
		"$reject":       b.rejectHandler,
		"$password":     b.passwordHandler,
	}
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID || message.Author.Bot {
		return
	}
	if !startsWith(message.Content, "$") {
		return
	}

	cmd, err := b.parse(message)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, "Could not read that command, check your quotes")
		return
	}
	handler, ok := b.handlers()[cmd.name]
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// A failing handler must never take the bot down with it
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error().Interface("panic", r).Str("command", cmd.name).Msg("command handler panicked")
			session.ChannelMessageSend(cmd.channel, "An unexpected error occured")
		}
	}()

	b.Logger.Debug().Str("command", cmd.name).Str("user_id", cmd.user.UserID).Msg("handling command")
	handler(ctx, session, cmd)
}

func (b *Bot) parse(message *discordgo.MessageCreate) (command, error) {
	parts, err := b.splitter.Split(strings.TrimSpace(message.Content))
	if err != nil {
		return command{}, err
	}
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "\"“”")
		if part != "" {
			args = append(args, part)
		}
	}
	if len(args) == 0 {
		return command{}, fmt.Errorf("empty command")
	}

	return command{
		name:    strings.ToLower(args[0]),
		args:    args[1:],
		user:    shared.User{UserID: message.Author.ID, Username: message.Author.Username},
		channel: message.ChannelID,
		direct:  message.GuildID == "",
	}, nil
}

// reply sends a plain message and logs when discord refuses it
func (b *Bot) reply(session DiscordSession, cmd command, content string) {
	if _, err := session.ChannelMessageSend(cmd.channel, content); err != nil {
		b.Logger.Warn().Err(err).Str("command", cmd.name).Msg("failed to send reply")
	}
}

func (b *Bot) replyEmbed(session DiscordSession, cmd command, embed *discordgo.MessageEmbed) {
	if _, err := session.ChannelMessageSendEmbed(cmd.channel, embed); err != nil {
		b.Logger.Warn().Err(err).Str("command", cmd.name).Msg("failed to send embed")
	}
}

// fail logs err and replies with its user facing message
func (b *Bot) fail(session DiscordSession, cmd command, err error, fallback string) {
	b.Logger.Info().Err(err).Str("command", cmd.name).Str("user_id", cmd.user.UserID).Msg("command failed")
	message := api.UserMessage(err, fallback)
	if message == api.ErrNotLoggedIn.Error() {
		message = fmt.Sprintf("You need to log in first: %s", b.link("/login"))
	}
	b.reply(session, cmd, message)
}

func (b *Bot) link(path string) string {
	return b.WebURL + path
}

// contestArg parses the contest id argument at position i
func contestArg(cmd command, i int) (int64, bool) {
	if len(cmd.args) <= i {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(cmd.args[i], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageArg parses an optional 1-based page argument at position i, defaulting to 1
func pageArg(cmd command, i int) int {
	if len(cmd.args) <= i {
		return 1
	}
	page, err := strconv.Atoi(cmd.args[i])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}
