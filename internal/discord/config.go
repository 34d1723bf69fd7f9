package discord

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// older deployments name the token BOT_TOKEN
	if cfg.DiscordToken == "" {
		cfg.DiscordToken = os.Getenv("BOT_TOKEN")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.TrackerAPIKey == "" {
		return fmt.Errorf("TRN_API_KEY is required")
	}
	if c.AccountsPath == "" {
		return fmt.Errorf("ACCOUNTS_PATH must not be empty")
	}
	if c.LeaderboardConcurrency < 1 {
		return fmt.Errorf("LEADERBOARD_CONCURRENCY must be at least 1")
	}
	return nil
}
