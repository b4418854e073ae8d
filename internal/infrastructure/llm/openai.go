package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when an OpenAI-compatible endpoint answers without choices
var ErrNoChoices = errors.New("no response choices returned")

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.URL != "" {
		cfg.BaseURL = opts.URL
	}
	cfg.HTTPClient = opts.httpClient()

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Complete sends the system prompt and one user turn and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, prompt models.Prompt) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
