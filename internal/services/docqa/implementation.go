package docqa

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/infrastructure/llm"
	"github.com/deepgram/parley/internal/services/dispatch"
	"github.com/deepgram/parley/internal/services/ingest"
	"github.com/deepgram/parley/internal/services/workspace"
	"github.com/deepgram/parley/pkg/logger"
)

// TextExtractor turns uploaded bytes into document text
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type Implementation struct {
	provider  llm.Provider
	extractor TextExtractor
	store     workspace.Store
	guard     *dispatch.Guard
}

func NewService(provider llm.Provider, extractor TextExtractor, store workspace.Store, guard *dispatch.Guard) (*Implementation, error) {
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("text extractor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("workspace store is required")
	}
	if guard == nil {
		guard = dispatch.NewGuard()
	}

	return &Implementation{
		provider:  provider,
		extractor: extractor,
		store:     store,
		guard:     guard,
	}, nil
}

func (s *Implementation) Upload(ctx context.Context, sessionID string, upload Upload) (models.Notice, error) {
	l := logger.For(logger.DOCUMENT).With().
		Str("session_id", sessionID).
		Str("file_name", upload.FileName).
		Str("declared_type", upload.DeclaredType).
		Logger()

	if !ingest.IsPDF(upload.DeclaredType) {
		l.Warn().Msg("Rejected upload with non-PDF type")
		return NoticeNotPDF, ingest.ErrNotPDF
	}

	release, err := s.guard.TryAcquire(sessionID, string(workspace.FlowDocument))
	if err != nil {
		return models.Notice{}, err
	}
	defer release()

	text, err := s.extractor.Extract(ctx, upload.Data)
	if err != nil {
		l.Error().Err(err).Int("bytes", len(upload.Data)).Msg("Failed to process PDF")
		if !errors.Is(err, ingest.ErrExtract) {
			err = fmt.Errorf("%w: %v", ingest.ErrExtract, err)
		}
		return NoticeFailed, err
	}

	err = s.store.Update(ctx, sessionID, func(state *workspace.State) error {
		state.Context = models.DocumentContext{FileName: upload.FileName, FullText: text}
		return nil
	})
	if err != nil {
		return models.Notice{}, fmt.Errorf("failed to store document: %w", err)
	}

	l.Info().Int("characters", len(text)).Msg("Document loaded")
	return NoticeLoaded, nil
}

func (s *Implementation) Clear(ctx context.Context, sessionID string) error {
	logger.For(logger.DOCUMENT).Info().Str("session_id", sessionID).Msg("Clearing document")

	return s.store.Update(ctx, sessionID, func(state *workspace.State) error {
		state.Context = models.DocumentContext{}
		return nil
	})
}

// Submit sends the whole document in the system prompt with every question.
// The transcript records the raw input, not the wrapped question.
func (s *Implementation) Submit(ctx context.Context, sessionID, input string) (models.Exchange, error) {
	l := logger.For(logger.DOCUMENT).With().Str("session_id", sessionID).Logger()

	if dispatch.Blank(input) {
		return models.Exchange{}, dispatch.ErrEmptyInput
	}

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return models.Exchange{}, err
	}
	if state.Context.Empty() {
		return models.Exchange{}, ErrNoDocument
	}

	release, err := s.guard.TryAcquire(sessionID, string(workspace.FlowDocument))
	if err != nil {
		l.Warn().Msg("Rejected document question while another request is in flight")
		return models.Exchange{}, err
	}
	defer release()

	ex := dispatch.Exchange(ctx, s.provider, models.Prompt{
		System: models.DocumentSystemPrompt(state.Context.FullText),
		User:   models.DocumentQuestion(input),
	}, input)

	err = s.store.Update(ctx, sessionID, func(state *workspace.State) error {
		state.Document.Append(ex)
		return nil
	})
	if err != nil {
		return models.Exchange{}, fmt.Errorf("failed to record document exchange: %w", err)
	}

	l.Info().Bool("fallback", ex.Failed).Str("file_name", state.Context.FileName).Msg("Document exchange recorded")
	return ex, nil
}

func (s *Implementation) Transcript(ctx context.Context, sessionID string) ([]models.Message, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Document.Snapshot(), nil
}

func (s *Implementation) Status(ctx context.Context, sessionID string) (Status, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Status{}, err
	}
	st := statusOf(state.Context)
	st.CanSubmit = st.CanSubmit && !s.Busy(sessionID)
	return st, nil
}

// Busy reports whether an upload or question is outstanding for the session
func (s *Implementation) Busy(sessionID string) bool {
	return s.guard.InFlight(sessionID, string(workspace.FlowDocument))
}
