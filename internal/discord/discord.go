package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/leaderboard"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	maxLeaderboardSize = 10
	statusText         = "Rocket League stats"
)

// platformChoices offers the recognised platforms as slash command choices
func platformChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(accounts.Platforms))
	for i, p := range accounts.Platforms {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  p.Display(),
			Value: string(p),
		}
	}
	return choices
}

// Command definitions
func commandDefinitions() []*discordgo.ApplicationCommand {
	minCount := 1.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        string(CmdLink),
			Description: "Link your Rocket League account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "username",
					Description: "Your in-game name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "platform",
					Description: "Where you play",
					Required:    true,
					Choices:     platformChoices(),
				},
			},
		},
		{
			Name:        string(CmdUnlink),
			Description: "Unlink your Rocket League account",
		},
		{
			Name:        string(CmdPlatform),
			Description: "Change the platform of your linked account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "platform",
					Description: "Your new platform",
					Required:    true,
					Choices:     platformChoices(),
				},
			},
		},
		{
			Name:        string(CmdStats),
			Description: "Show your Rocket League stats",
		},
		{
			Name:        string(CmdLeaderboard),
			Description: "Top linked players by MMR",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of players to show (1-10, default: 5)",
					Required:    false,
					MinValue:    &minCount,
					MaxValue:    maxLeaderboardSize,
				},
			},
		},
	}
}

// NewDiscordBot creates a new Discord bot with the provided configuration
func NewDiscordBot(config *Config, dir *accounts.Directory, stats leaderboard.Fetcher, reg prometheus.Registerer) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	bot := &DiscordBot{
		Session:  session,
		Config:   config,
		Accounts: dir,
		Stats:    stats,
		Ops:      NewOpsLog(session, config.OpsChannelID),
		Metrics:  NewMetrics(reg),
		GuildID:  config.GuildID,
	}
	if config.OpenAIToken != "" {
		bot.Commentary = NewOpenAIClient(config.OpenAIToken, config.MaxTokens, config.Temperature)
	}
	bot.CommandHandlers = bot.routes()

	return bot, nil
}

// routes maps every command to its handler
func (b *DiscordBot) routes() map[Command]commandFunc {
	return map[Command]commandFunc{
		CmdLink:        b.handleLink,
		CmdUnlink:      b.handleUnlink,
		CmdPlatform:    b.handlePlatform,
		CmdStats:       b.handleStats,
		CmdLeaderboard: b.handleLeaderboard,
	}
}

// Start starts the Discord bot
func (b *DiscordBot) Start() error {
	b.Session.AddHandler(b.readyHandler)
	b.Session.AddHandler(b.interactionHandler)

	// Open a websocket connection to Discord
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}

	// keep whatever was registered so Stop can remove it after a partial failure
	registeredCommands, err := b.registerCommands()
	b.Commands = registeredCommands
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}

	slog.Info("Slash commands registered", "count", len(registeredCommands), "guild", b.GuildID)
	return nil
}

// Stop stops the Discord bot and removes commands if configured to do so
func (b *DiscordBot) Stop() error {
	if b.Config == nil || b.Config.RemoveCommands {
		slog.Info("Removing commands")
		for _, cmd := range b.Commands {
			if b.Session.State == nil || b.Session.State.User == nil {
				break
			}
			err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.GuildID, cmd.ID)
			if err != nil {
				slog.Error("Error removing command", "name", cmd.Name, "error", err)
			}
		}
	}

	b.Ops.Close()
	return b.Session.Close()
}

// registerCommands registers the defined slash commands
func (b *DiscordBot) registerCommands() ([]*discordgo.ApplicationCommand, error) {
	definitions := commandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(definitions))

	for _, cmd := range definitions {
		registered, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.GuildID, cmd)
		if err != nil {
			return registeredCommands, fmt.Errorf("error creating command '%s': %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
	}

	return registeredCommands, nil
}

func (b *DiscordBot) readyHandler(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("OctaneCore is online", "user", r.User.Username, "guilds", len(r.Guilds))
	if err := s.UpdateWatchStatus(0, statusText); err != nil {
		slog.Warn("Failed to set presence", "error", err)
	}
}

// interactionHandler handles Discord interaction events
func (b *DiscordBot) interactionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	cmd := Command(data.Name)
	handler, ok := b.CommandHandlers[cmd]
	if !ok {
		slog.Warn("Unknown command", "command", data.Name)
		return
	}

	// Acknowledge the interaction immediately
	var flags discordgo.MessageFlags
	if cmd.private() {
		flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	}); err != nil {
		slog.Error("Error acknowledging interaction", "command", cmd, "error", err)
		return
	}

	req := request{
		OwnerID: callerID(i),
		Options: optionMap(data.Options),
	}
	slog.Debug("Received command", "command", cmd, "owner", req.OwnerID, "guild", i.GuildID)

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout(cmd))
	defer cancel()

	embed, err := handler(ctx, req)
	b.Metrics.observeCommand(cmd, err)
	if err != nil {
		b.reportError(cmd, req, err)
		title, description := describeError(err)
		b.sendError(s, i, title, description)
		return
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		slog.Error("Error editing interaction response", "command", cmd, "error", err)
	}
}

// private reports whether replies to the command are shown only to the caller
func (c Command) private() bool {
	switch c {
	case CmdLink, CmdUnlink, CmdPlatform:
		return true
	}
	return false
}

const (
	commandTimeout     = 10 * time.Second
	leaderboardTimeout = 20 * time.Second
)

// pacer is implemented by stats fetchers that throttle their lookups
type pacer interface {
	Delay(n int) time.Duration
}

// commandTimeout bounds a command. A leaderboard gets extra time for every
// lookup the rate limiter will hold back, so throttling never cuts the
// ranking short.
func (b *DiscordBot) commandTimeout(cmd Command) time.Duration {
	if cmd != CmdLeaderboard {
		return commandTimeout
	}
	d := leaderboardTimeout
	if p, ok := b.Stats.(pacer); ok && b.Accounts != nil {
		d += p.Delay(b.Accounts.Len())
	}
	return d
}

// sendError sends an error embed
func (b *DiscordBot) sendError(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorError,
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		slog.Error("Error editing error response", "error", err)
	}
}

// callerID returns the Discord user behind an interaction, in a guild or a DM
func callerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// String returns a string option, or "" when it was not supplied
func (r request) String(name string) string {
	if opt, ok := r.Options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// Int returns an integer option, or def when it was not supplied
func (r request) Int(name string, def int) int {
	if opt, ok := r.Options[name]; ok {
		return int(opt.IntValue())
	}
	return def
}
