// Package config aggregates every component's settings into one YAML file and
// overlays secrets from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Soypete/streambuddy/ai"
	"github.com/Soypete/streambuddy/budget"
	"github.com/Soypete/streambuddy/classifier"
	"github.com/Soypete/streambuddy/discord"
	"github.com/Soypete/streambuddy/games"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/mention"
	"github.com/Soypete/streambuddy/patterns"
	"github.com/Soypete/streambuddy/templates"
	twitchirc "github.com/Soypete/streambuddy/twitch"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the whole co-host configuration.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
	DatabaseURL string `yaml:"database_url"`

	Mention    mention.Config    `yaml:"mention"`
	Classifier classifier.Config `yaml:"classifier"`
	Games      games.Config      `yaml:",inline"`
	Templates  templates.Config  `yaml:"templates"`
	Patterns   patterns.Config   `yaml:"patterns"`
	Budget     BudgetConfig      `yaml:"budget"`
	Fallback   ai.Config         `yaml:"fallback"`
	Analytics  AnalyticsConfig   `yaml:"analytics"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Twitch     twitchirc.Config  `yaml:"twitch"`
	Discord    discord.Config    `yaml:"discord"`
}

// BudgetConfig adds the reset loop's tick to the governor settings.
type BudgetConfig struct {
	budget.Config `yaml:",inline"`
	ResetTick     time.Duration `yaml:"reset_tick"`
}

type AnalyticsConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// DefaultConfig returns every component's defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:    string(logging.LogLevelInfo),
		MetricsAddr: ":6060",
		Mention:     mention.DefaultConfig(),
		Classifier:  classifier.DefaultConfig(),
		Games:       games.DefaultConfig(),
		Templates:   templates.DefaultConfig(),
		Patterns:    patterns.DefaultConfig(),
		Budget: BudgetConfig{
			Config:    budget.DefaultConfig(),
			ResetTick: time.Minute,
		},
		Fallback:  ai.DefaultConfig(),
		Analytics: AnalyticsConfig{FlushInterval: 5 * time.Minute},
		Telemetry: TelemetryConfig{ServiceName: "streambuddy"},
		Twitch:    twitchirc.DefaultConfig(),
		Discord:   discord.DefaultConfig(),
	}
}

// LoadEnv loads a .env file into the environment when one exists.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load starts from the defaults, overlays the file at path and the
// environment, and validates the result. An empty path uses the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv copies secrets and endpoints from the environment. Set variables
// win over the file.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Fallback.APIKey, "OPENAI_API_KEY")
	set(&c.Fallback.BaseURL, "LLM_BASE_URL")
	set(&c.DatabaseURL, "DATABASE_URL")
	set(&c.Twitch.ClientID, "TWITCH_ID")
	set(&c.Twitch.ClientSecret, "TWITCH_SECRET")
	set(&c.Twitch.OAuthToken, "TWITCH_OAUTH_TOKEN")
	set(&c.Twitch.Channel, "TWITCH_CHANNEL")
	set(&c.Discord.Token, "DISCORD_SECRET")
	set(&c.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Validate checks the settings the components cannot run without. Errors name
// the offending field.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level: %v", err)
	}
	if len(c.Mention.Names) == 0 {
		add("mention.names: at least one name is required")
	}
	for i, n := range c.Mention.Names {
		if mention.Normalize(n) == "" {
			add("mention.names[%d]: name is empty", i)
		}
	}
	if c.Mention.MaxSenders <= 0 {
		add("mention.max_senders: must be positive")
	}
	if c.Mention.SenderTTL <= 0 {
		add("mention.sender_ttl: must be positive")
	}

	if len(c.Games.Games) == 0 {
		add("games: at least one game is required")
	}
	for i, g := range c.Games.Games {
		if g.ID == "" {
			add("games[%d].id: id is required", i)
		}
	}

	if c.Templates.HitTTL <= 0 {
		add("templates.hit_ttl: must be positive")
	}
	if c.Templates.MissTTL <= 0 {
		add("templates.miss_ttl: must be positive")
	}
	if c.Templates.CacheSize <= 0 {
		add("templates.cache_size: must be positive")
	}

	if c.Budget.DailyLimit < 0 {
		add("budget.daily_limit: must not be negative")
	}
	if c.Budget.MonthlyLimit < 0 {
		add("budget.monthly_limit: must not be negative")
	}
	if c.Budget.DailyCallLimit < 0 || c.Budget.MonthlyCallLimit < 0 {
		add("budget.call_limit: must not be negative")
	}
	if _, err := c.Budget.Zone(); err != nil {
		add("budget.location: %v", err)
	}
	if c.Budget.ResetTick <= 0 {
		add("budget.reset_tick: must be positive")
	}

	switch c.Fallback.Provider {
	case "", ai.ProviderLangchain, ai.ProviderOpenAI:
	default:
		add("fallback.provider: unknown provider %q", c.Fallback.Provider)
	}
	if c.Fallback.Timeout <= 0 {
		add("fallback.timeout: must be positive")
	}

	if c.Analytics.FlushInterval <= 0 {
		add("analytics.flush_interval: must be positive")
	}

	reg := games.NewRegistry(c.Games)
	if _, err := classifier.New(c.Classifier, reg.Terms(), logging.Discard()); err != nil {
		add("classifier: %v", err)
	}
	if _, err := patterns.New(c.Patterns, nil, time.Now, logging.Discard()); err != nil {
		add("patterns: %v", err)
	}

	if c.Twitch.Enabled && c.Twitch.Channel == "" {
		add("twitch.channel: required when twitch is enabled")
	}
	if c.Discord.Enabled && c.Discord.Token == "" {
		add("discord: DISCORD_SECRET is required when discord is enabled")
	}

	return errors.Join(errs...)
}
