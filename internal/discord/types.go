package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/leaderboard"
	"github.com/hunterjsb/octanecore/internal/tracker"
	"github.com/sashabaranov/go-openai"
)

// Command is one of the bot's slash commands
type Command string

const (
	CmdLink        Command = "link"
	CmdUnlink      Command = "unlink"
	CmdPlatform    Command = "platform"
	CmdStats       Command = "stats"
	CmdLeaderboard Command = "leaderboard"
)

// DiscordBot represents a Discord bot
type DiscordBot struct {
	Session         *discordgo.Session
	Config          *Config
	Accounts        *accounts.Directory
	Stats           leaderboard.Fetcher
	Commentary      Commentator
	Ops             *OpsLog
	Metrics         *Metrics
	GuildID         string
	Commands        []*discordgo.ApplicationCommand
	CommandHandlers map[Command]commandFunc
}

// Config holds Discord bot configuration
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"`
	OpsChannelID string `env:"OPS_CHANNEL_ID"`

	TrackerAPIKey  string        `env:"TRN_API_KEY"`
	TrackerBaseURL string        `env:"TRACKER_BASE_URL" envDefault:"https://public-api.tracker.gg/v2"`
	TrackerTimeout time.Duration `env:"TRACKER_TIMEOUT" envDefault:"10s"`
	TrackerRate    float64       `env:"TRACKER_RATE" envDefault:"2"`
	StatsCacheTTL  time.Duration `env:"STATS_CACHE_TTL" envDefault:"0s"`

	AccountsPath           string `env:"ACCOUNTS_PATH" envDefault:"./data/linked_users.json"`
	LeaderboardConcurrency int    `env:"LEADERBOARD_CONCURRENCY" envDefault:"4"`

	OpenAIToken string  `env:"OPENAI_API_KEY"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"80"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0.7"`

	RemoveCommands bool   `env:"REMOVE_COMMANDS" envDefault:"true"`
	OpsAddr        string `env:"OPS_ADDR"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// Commentator writes a short remark about a player's stats
type Commentator interface {
	StatsComment(ctx context.Context, snap *tracker.Snapshot) (string, error)
}

// OpenAIClient wraps the OpenAI API client
type OpenAIClient struct {
	client      *openai.Client
	maxTokens   int
	temperature float32
}

// request is the caller identity and options of one interaction
type request struct {
	OwnerID string
	Options map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// commandFunc runs a command and returns the embed to show the caller
type commandFunc func(ctx context.Context, req request) (*discordgo.MessageEmbed, error)
