package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/discord"
	"github.com/hunterjsb/octanecore/internal/dotenv"
	"github.com/hunterjsb/octanecore/internal/ops"
	"github.com/hunterjsb/octanecore/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func main() {
	// Missing .env is fine, the environment may already be set
	if err := dotenv.LoadIfPresent(".env"); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	app := &cli.App{
		Name:   "octanecore",
		Usage:  "Rocket League stats bot for Discord",
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "bot",
				Usage:  "run the Discord bot",
				Action: runBot,
			},
			{
				Name:  "lookup",
				Usage: "fetch stats for one player and print them",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Value: "epic", Usage: "steam, epic, psn or xbl"},
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				},
				Action: runLookup,
			},
			{
				Name:   "accounts",
				Usage:  "list linked accounts from the store",
				Action: runAccounts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (*discord.Config, error) {
	config, err := discord.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	setupLogging(config.LogLevel)
	return config, nil
}

func newTrackerClient(config *discord.Config, reg prometheus.Registerer) (*tracker.Client, *tracker.Cache) {
	cache := tracker.NewCache(config.StatsCacheTTL)
	opts := []tracker.Option{
		tracker.WithBaseURL(config.TrackerBaseURL),
		tracker.WithTimeout(config.TrackerTimeout),
		tracker.WithRateLimit(config.TrackerRate, int(config.TrackerRate)+1),
		tracker.WithCache(cache),
	}
	if reg != nil {
		opts = append(opts, tracker.WithMetrics(tracker.NewMetrics(reg)))
	}
	return tracker.NewClient(config.TrackerAPIKey, opts...), cache
}

func runBot(c *cli.Context) error {
	started := time.Now()
	slog.Info("Starting Discord bot mode")

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dir, err := accounts.Open(config.AccountsPath)
	if err != nil {
		return fmt.Errorf("opening account store: %w", err)
	}
	slog.Info("Account store loaded", "path", dir.Path(), "accounts", dir.Len())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, cache := newTrackerClient(config, reg)
	stopJanitor := cache.StartJanitor(0)

	bot, err := discord.NewDiscordBot(config, dir, client, reg)
	if err != nil {
		stopJanitor()
		return fmt.Errorf("creating bot: %w", err)
	}

	var opsServer *ops.Server
	if config.OpsAddr != "" {
		opsServer = ops.NewServer(config.OpsAddr, ops.NewRouter(dir, reg, started))
		opsServer.Start()
	}

	shutdown := func() error {
		stopJanitor()
		if opsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := opsServer.Shutdown(ctx); err != nil {
				slog.Warn("Ops server shutdown", "error", err)
			}
		}
		return bot.Stop()
	}

	if err := bot.Start(); err != nil {
		if stopErr := shutdown(); stopErr != nil {
			slog.Warn("Cleanup after failed start", "error", stopErr)
		}
		return fmt.Errorf("starting bot: %w", err)
	}

	// Set up graceful shutdown
	discord.SetupCloseHandler(shutdown)

	// Block main goroutine indefinitely
	slog.Info("Bot is now running. Press CTRL-C to exit.")
	select {}
}

func runLookup(c *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if config.TrackerAPIKey == "" {
		return fmt.Errorf("TRN_API_KEY is required")
	}

	platform, err := accounts.ParsePlatform(c.String("platform"))
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.String("platform"))
	}

	client, _ := newTrackerClient(config, nil)
	snap, err := client.Fetch(c.Context, platform, c.String("username"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %s on %s\n", snap.Username, snap.Platform.Display())
	fmt.Printf("Rank: %s  MMR: %.0f  Wins: %d  Goals: %d\n", snap.Rank, snap.MMR, snap.Wins, snap.Goals)
	return nil
}

func runAccounts(c *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	dir, err := accounts.Open(config.AccountsPath)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER\tPLATFORM\tUSERNAME")
	for _, acc := range dir.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", acc.OwnerID, acc.Platform.Display(), acc.Username)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d linked accounts in %s\n", dir.Len(), dir.Path())
	return nil
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
