package services

import (
	"fmt"
	"sync"

	"github.com/deepgram/parley/internal/config"
	"github.com/deepgram/parley/internal/infrastructure/llm"
	"github.com/deepgram/parley/internal/infrastructure/redis"
	"github.com/deepgram/parley/internal/services/chat"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/docqa"
	"github.com/deepgram/parley/internal/services/ingest"
	"github.com/deepgram/parley/internal/services/markdown"
	"github.com/deepgram/parley/internal/services/session"
	"github.com/deepgram/parley/internal/services/workspace"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	chatService     *chat.Implementation
	docQAService    *docqa.Implementation
	markdownService *markdown.Renderer
	redisService    *redis.Service
	sessionService  *session.Service
	workspaceStore  workspace.Store
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Redis is optional; both stores fall back to memory
	redisService := redis.NewService()

	return build(llm.NewService(), redisService)
}

// NewWithProvider wires the service graph around a given provider with in-memory stores
func NewWithProvider(provider llm.Provider) (*Services, error) {
	return build(provider, nil)
}

func build(provider llm.Provider, redisService *redis.Service) (*Services, error) {
	workspaceStore := workspace.NewStore(redisService, config.GetSessionLifetime())
	sessionService := session.NewService(redisService)
	guard := dispatch.NewGuard()

	chatService, err := chat.NewService(provider, workspaceStore, guard)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}

	docQAService, err := docqa.NewService(provider, ingest.NewExtractor(), workspaceStore, guard)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize document service")
		return nil, fmt.Errorf("failed to initialize document service: %w", err)
	}

	log.Info().Msg("All services initialized successfully")

	return &Services{
		chatService:     chatService,
		docQAService:    docQAService,
		markdownService: markdown.NewRenderer(),
		redisService:    redisService,
		sessionService:  sessionService,
		workspaceStore:  workspaceStore,
	}, nil
}

// GetChatService returns the chat flow
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetDocQAService returns the document Q&A flow
func (s *Services) GetDocQAService() *docqa.Implementation {
	return s.docQAService
}

// GetMarkdownService returns the markdown renderer
func (s *Services) GetMarkdownService() *markdown.Renderer {
	return s.markdownService
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetWorkspaceStore returns the per-session state store
func (s *Services) GetWorkspaceStore() workspace.Store {
	return s.workspaceStore
}

// Close releases the redis connection if one was opened
func (s *Services) Close() error {
	if s.redisService != nil {
		return s.redisService.Close()
	}
	return nil
}
