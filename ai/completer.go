// Package ai is the fallback path: it asks an external model to answer chat
// questions that no template or pattern could.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/streambuddy/budget"
)

// Completion is the model's answer plus what it reported about token usage.
type Completion struct {
	Text  string
	Usage budget.Usage
}

// Completer issues a single chat completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
}

const (
	ProviderLangchain = "langchain"
	ProviderOpenAI    = "openai"
)

// Config configures the fallback model.
type Config struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// MaxChars caps the reply so it fits in a chat message.
	MaxChars int `yaml:"max_chars"`
	// Streamer and BotName are used in the prompt.
	Streamer string `yaml:"streamer"`
	BotName  string `yaml:"bot_name"`

	APIKey string `yaml:"-"`
}

// DefaultConfig targets gpt-4o-mini through langchaingo.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderLangchain,
		Model:       "gpt-4o-mini",
		MaxTokens:   150,
		Temperature: 0.7,
		Timeout:     20 * time.Second,
		MaxChars:    450,
		Streamer:    "the streamer",
		BotName:     "StreamBuddy",
	}
}

// NewCompleter builds the configured backend. It returns nil, nil when no
// API key is configured, which makes the Adapter answer with an apology.
func NewCompleter(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case ProviderLangchain, "":
		return NewLangchainCompleter(cfg)
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fallback provider %q", cfg.Provider)
	}
}
