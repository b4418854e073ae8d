package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/deepgram/parley/internal/config"
	"github.com/deepgram/parley/internal/domain/models"
	"github.com/rs/zerolog/log"
)

// Provider completes a single-turn prompt against a remote model
type Provider interface {
	Complete(ctx context.Context, prompt models.Prompt) (string, error)
}

// Options configures either provider
type Options struct {
	URL        string
	APIKey     string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: o.Timeout}
}

// NewService builds the provider selected by LLM_API_STYLE
func NewService() Provider {
	style := config.GetLLMAPIStyle()
	opts := Options{
		APIKey:    config.GetXAIAPIKey(),
		Model:     config.GetXAIModel(),
		MaxTokens: config.GetXAIMaxTokens(),
		Timeout:   config.GetLLMTimeout(),
	}

	if style == config.APIStyleOpenAI {
		opts.URL = config.GetXAIOpenAIBaseURL()
		log.Info().Str("style", style).Str("base_url", opts.URL).Str("model", opts.Model).Msg("Initialising completion provider")
		return NewOpenAIClient(opts)
	}

	opts.URL = config.GetXAIAPIURL()
	log.Info().Str("style", style).Str("url", opts.URL).Str("model", opts.Model).Msg("Initialising completion provider")
	return NewMessagesClient(opts)
}
