package ai

import (
	"context"
	"fmt"

	"github.com/Soypete/streambuddy/budget"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainCompleter calls any OpenAI compatible endpoint through langchaingo.
type LangchainCompleter struct {
	llm         llms.Model
	maxTokens   int
	temperature float64
}

// NewLangchainCompleter creates the langchaingo backed completer.
func NewLangchainCompleter(cfg Config) (*LangchainCompleter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI LLM: %w", err)
	}
	return &LangchainCompleter{llm: llm, maxTokens: cfg.MaxTokens, temperature: cfg.Temperature}, nil
}

func (c *LangchainCompleter) Complete(ctx context.Context, system, user string) (Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithCandidateCount(1),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to get llm response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("llm returned no choices")
	}

	choice := resp.Choices[0]
	return Completion{
		Text: choice.Content,
		Usage: budget.Usage{
			PromptTokens:     infoInt(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: infoInt(choice.GenerationInfo, "CompletionTokens"),
		},
	}, nil
}

func infoInt(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
