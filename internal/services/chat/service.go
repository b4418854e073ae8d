package chat

import (
	"context"

	"github.com/deepgram/parley/internal/domain/models"
)

// Service defines the chat flow
type Service interface {
	// Submit sends input with the chat persona and records the exchange
	Submit(ctx context.Context, sessionID, input string) (models.Exchange, error)
	// Transcript returns every message of the session's chat flow
	Transcript(ctx context.Context, sessionID string) ([]models.Message, error)
}
