package ai

import (
	"context"
	"fmt"

	"github.com/Soypete/streambuddy/budget"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompleter talks to the OpenAI chat completions API with go-openai.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAICompleter creates a go-openai backed completer. BaseURL overrides the API host.
func NewOpenAICompleter(cfg Config) *OpenAICompleter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("no response choices")
	}

	return Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: budget.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
