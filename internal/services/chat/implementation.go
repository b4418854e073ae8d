package chat

import (
	"context"
	"fmt"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/infrastructure/llm"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/workspace"
	"github.com/deepgram/parley/pkg/logger"
)

type Implementation struct {
	provider llm.Provider
	store    workspace.Store
	guard    *dispatch.Guard
}

func NewService(provider llm.Provider, store workspace.Store, guard *dispatch.Guard) (*Implementation, error) {
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("workspace store is required")
	}
	if guard == nil {
		guard = dispatch.NewGuard()
	}

	return &Implementation{
		provider: provider,
		store:    store,
		guard:    guard,
	}, nil
}

// Submit never replays earlier turns upstream; only input goes out
func (s *Implementation) Submit(ctx context.Context, sessionID, input string) (models.Exchange, error) {
	l := logger.For(logger.CHAT).With().Str("session_id", sessionID).Logger()

	if dispatch.Blank(input) {
		return models.Exchange{}, dispatch.ErrEmptyInput
	}

	release, err := s.guard.TryAcquire(sessionID, string(workspace.FlowChat))
	if err != nil {
		l.Warn().Msg("Rejected chat submission while another is in flight")
		return models.Exchange{}, err
	}
	defer release()

	l.Debug().Int("input_length", len(input)).Msg("Dispatching chat message")

	ex := dispatch.Exchange(ctx, s.provider, models.Prompt{
		System: models.ChatPersona,
		User:   input,
	}, input)

	err = s.store.Update(ctx, sessionID, func(state *workspace.State) error {
		state.Chat.Append(ex)
		return nil
	})
	if err != nil {
		return models.Exchange{}, fmt.Errorf("failed to record chat exchange: %w", err)
	}

	l.Info().Bool("fallback", ex.Failed).Msg("Chat exchange recorded")
	return ex, nil
}

func (s *Implementation) Transcript(ctx context.Context, sessionID string) ([]models.Message, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Chat.Snapshot(), nil
}

// Busy reports whether the session has a chat request outstanding
func (s *Implementation) Busy(sessionID string) bool {
	return s.guard.InFlight(sessionID, string(workspace.FlowChat))
}
