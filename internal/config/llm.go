package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// APIStyleMessages posts to a messages endpoint with a top-level system prompt
	APIStyleMessages = "messages"
	// APIStyleOpenAI posts to an OpenAI-compatible chat completions endpoint
	APIStyleOpenAI = "openai"
)

// GetXAIAPIKey returns the bearer credential for the completion endpoint.
// A missing key is not fatal: every upstream call will fail and the flows
// answer with their fallback reply.
func GetXAIAPIKey() string {
	value := GetEnvOrDefault("XAI_API_KEY", "")
	if value == "" {
		log.Warn().Msg("XAI_API_KEY environment variable not set")
	}
	return value
}

func GetXAIAPIURL() string {
	return GetEnvOrDefault("XAI_API_URL", "https://api.x.ai/v1/messages")
}

func GetXAIOpenAIBaseURL() string {
	return GetEnvOrDefault("XAI_OPENAI_BASE_URL", "https://api.x.ai/v1")
}

func GetXAIModel() string {
	return GetEnvOrDefault("XAI_MODEL", "grok-beta")
}

func GetXAIMaxTokens() int {
	return parseEnvInt("XAI_MAX_TOKENS", 1280)
}

// GetLLMAPIStyle returns which wire format to speak upstream
func GetLLMAPIStyle() string {
	style := GetEnvOrDefault("LLM_API_STYLE", APIStyleMessages)
	switch style {
	case APIStyleMessages, APIStyleOpenAI:
		return style
	default:
		log.Warn().Str("style", style).Msg("Unknown LLM_API_STYLE, falling back to messages")
		return APIStyleMessages
	}
}

func GetLLMTimeout() time.Duration {
	return parseEnvDuration("LLM_TIMEOUT", 120*time.Second)
}
