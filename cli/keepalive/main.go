package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Soypete/streambuddy/config"
	"github.com/Soypete/streambuddy/keepalive"
	"github.com/Soypete/streambuddy/logging"
)

// settings is everything the watchdog reads from its environment.
type settings struct {
	baseURL      string
	watchTwitch  bool
	discordToken string
	alertChannel string
	alertUserID  string
	logLevel     logging.LogLevel
	monitor      keepalive.Config
}

// loadSettings reads the watchdog environment. Intervals accept a Go
// duration ("90s") or a bare number of seconds.
func loadSettings(getenv func(string) string) (settings, error) {
	lookup := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	s := settings{
		baseURL:      lookup("STREAMBUDDY_URL", "http://localhost:6060"),
		discordToken: lookup("DISCORD_SECRET", ""),
		alertChannel: lookup("DISCORD_ALERT_CHANNEL", "streambuddy-alerts"),
		alertUserID:  lookup("DISCORD_ALERT_USER_ID", ""),
		logLevel:     logging.LogLevel(lookup("LOG_LEVEL", "info")),
		monitor:      keepalive.DefaultConfig(),
	}

	watch, err := strconv.ParseBool(lookup("WATCH_TWITCH_AUTH", "true"))
	if err != nil {
		return settings{}, fmt.Errorf("WATCH_TWITCH_AUTH: %w", err)
	}
	s.watchTwitch = watch

	if s.monitor.CheckInterval, err = interval(lookup("CHECK_INTERVAL", ""), s.monitor.CheckInterval); err != nil {
		return settings{}, fmt.Errorf("CHECK_INTERVAL: %w", err)
	}
	if s.monitor.AlertInterval, err = interval(lookup("ALERT_INTERVAL", ""), s.monitor.AlertInterval); err != nil {
		return settings{}, fmt.Errorf("ALERT_INTERVAL: %w", err)
	}

	if s.discordToken == "" {
		return settings{}, errors.New("DISCORD_SECRET is required")
	}
	return s, nil
}

func interval(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		raw = strconv.Itoa(secs) + "s"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// targets builds the watch list. The auth check is only useful for the
// process that runs the Twitch transport.
func targets(baseURL string, twitch bool) []keepalive.Target {
	baseURL = strings.TrimRight(baseURL, "/")
	t := keepalive.Target{Name: "StreamBuddy", HealthURL: baseURL + "/healthz"}
	if twitch {
		t.AuthHealthURL = baseURL + "/healthz/auth"
	}
	return []keepalive.Target{t}
}

func main() {
	bootLogger := logging.Default()
	if err := config.LoadEnv(); err != nil {
		bootLogger.Error("failed to load env file", "error", err.Error())
		os.Exit(1)
	}

	s, err := loadSettings(os.Getenv)
	if err != nil {
		bootLogger.Error("invalid keepalive settings", "error", err.Error())
		os.Exit(1)
	}
	logger := logging.NewLogger(s.logLevel, os.Stdout)

	alerter, err := keepalive.NewDiscordAlerter(s.discordToken, s.alertChannel, s.alertUserID, logger)
	if err != nil {
		logger.Error("failed to create Discord alerter", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := alerter.Close(); err != nil {
			logger.Error("failed to close Discord alerter", "error", err.Error())
		}
	}()

	watch := targets(s.baseURL, s.watchTwitch)
	monitor := keepalive.NewMonitor(watch, s.monitor, alerter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting keepalive monitor",
		"checkInterval", s.monitor.CheckInterval.String(),
		"alertInterval", s.monitor.AlertInterval.String(),
		"targets", len(watch))

	if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("keepalive monitor error", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("keepalive monitor stopped")
}
