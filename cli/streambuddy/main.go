package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Soypete/streambuddy/budget"
	"github.com/Soypete/streambuddy/config"
	"github.com/Soypete/streambuddy/database"
	"github.com/Soypete/streambuddy/discord"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/pipeline"
	"github.com/Soypete/streambuddy/telemetry"
	twitchirc "github.com/Soypete/streambuddy/twitch"
	"github.com/Soypete/streambuddy/twitch/helix"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	var configPath string
	var logLevel string
	var envFile string

	flag.StringVar(&configPath, "config", os.Getenv("STREAMBUDDY_CONFIG"), "Path to the YAML config file (defaults when empty)")
	flag.StringVar(&logLevel, "errorLevel", "", "Log level (debug, info, warn, error), overrides the config file")
	flag.StringVar(&envFile, "env", ".env", "Path to a .env file with secrets")
	flag.Parse()

	bootLogger := logging.Default()
	if err := config.LoadEnv(envFile); err != nil {
		bootLogger.Error("failed to load env file", "error", err.Error())
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootLogger.Error("invalid log level", "error", err.Error())
		os.Exit(1)
	}
	logger := logging.NewLogger(level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, version, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err.Error())
		os.Exit(1)
	}
	defer shutdownTracing()

	server := metrics.SetupServer(cfg.MetricsAddr)

	var stores pipeline.Stores
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		stores = pipeline.Stores{Templates: db, Snapshots: db, Responses: db}
	} else {
		logger.Info("no database configured, using in-memory templates without persistence")
	}

	stack, err := pipeline.Build(cfg, stores, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err.Error())
		os.Exit(1)
	}

	var live *twitchirc.HelixLiveState
	if cfg.Twitch.Channel != "" && cfg.Twitch.ClientID != "" && cfg.Twitch.ClientSecret != "" {
		client := helix.NewAppClient(ctx, cfg.Twitch.ClientID, cfg.Twitch.ClientSecret, logger)
		live = twitchirc.NewHelixLiveState(client, cfg.Twitch.Channel, cfg.Twitch.LiveStateTTL, logger)
	}
	liveSource := func() twitchirc.LiveStateSource {
		if live == nil {
			return nil
		}
		return live
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Twitch.Enabled {
		irc, err := twitchirc.SetupTwitchIRC(gctx, cfg.Twitch, stack, liveSource(), logger)
		if err != nil {
			logger.Error("failed to setup twitch IRC", "error", err.Error())
			os.Exit(1)
		}
		// Register auth health endpoint
		server.RegisterAuthHealthHandler(irc.AuthHealthHandler())
		logger.Debug("auth health endpoint registered at /healthz/auth")
		g.Go(func() error { return irc.Run(gctx) })
	}

	if cfg.Discord.Enabled {
		session, err := discord.Setup(cfg.Discord, stack, liveSource(), logger)
		if err != nil {
			logger.Error("failed to setup discord session", "error", err.Error())
			os.Exit(1)
		}
		g.Go(func() error { return session.Run(gctx) })
	}

	if !cfg.Twitch.Enabled && !cfg.Discord.Enabled {
		logger.Warn("no transport enabled, only serving metrics")
	}

	loc, _ := cfg.Budget.Zone()
	g.Go(func() error { return stack.Aggregator.Run(gctx, cfg.Analytics.FlushInterval) })
	g.Go(func() error { return budget.RunResets(gctx, stack.Governor, cfg.Budget.ResetTick, loc, nil, logger) })

	go server.Run()
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	logger.Info("streambuddy running", "version", version, "twitch", cfg.Twitch.Enabled, "discord", cfg.Discord.Enabled)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutting down with error", "error", err.Error())
		shutdownTracing()
		os.Exit(1)
	}
	logger.Info("Shutting down")
}
