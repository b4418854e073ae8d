package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// StatusError is returned for any non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: status %d", e.StatusCode)
}

type messagesTurn struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system"`
	Messages  []messagesTurn `json:"messages"`
}

type messagesResponse struct {
	Content json.RawMessage `json:"content"`
}

// MessagesClient talks to a messages-style endpoint that takes the system prompt as a top-level field
type MessagesClient struct {
	url        string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewMessagesClient(opts Options) *MessagesClient {
	return &MessagesClient{
		url:        opts.URL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		httpClient: opts.httpClient(),
	}
}

// Complete sends one user turn and returns the normalized reply text
func (c *MessagesClient) Complete(ctx context.Context, prompt models.Prompt) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    prompt.System,
		Messages:  []messagesTurn{{Role: models.RoleUser, Content: prompt.User}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	content, err := ParseContent(decoded.Content)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("content_kind", content.Kind.String()).
		Int("status", resp.StatusCode).
		Msg("Received completion")

	return content.String(), nil
}
