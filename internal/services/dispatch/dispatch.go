package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/infrastructure/llm"
	"github.com/rs/zerolog/log"
)

// ErrInFlight is returned when a flow already has a request outstanding
var ErrInFlight = errors.New("a request is already in flight")

// Guard tracks the in-flight flag of every (session, flow) pair
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

func guardKey(sessionID, flow string) string {
	return flow + "/" + sessionID
}

// TryAcquire sets the flag and returns its release func, or ErrInFlight
func (g *Guard) TryAcquire(sessionID, flow string) (func(), error) {
	k := guardKey(sessionID, flow)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[k]; busy {
		return nil, ErrInFlight
	}
	g.inFlight[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, k)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether the pair currently holds the flag
func (g *Guard) InFlight(sessionID, flow string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[guardKey(sessionID, flow)]
	return busy
}

// Exchange sends one prompt and builds the transcript pair for it. Any
// upstream failure is logged and replaced by models.FallbackReply.
func Exchange(ctx context.Context, provider llm.Provider, prompt models.Prompt, input string) models.Exchange {
	ex := models.Exchange{
		User: models.Message{Role: models.RoleUser, Content: input},
	}

	reply, err := provider.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Completion request failed, answering with fallback")
		ex.Assistant = models.Message{Role: models.RoleAssistant, Content: models.FallbackReply}
		ex.Failed = true
		return ex
	}

	ex.Assistant = models.Message{Role: models.RoleAssistant, Content: reply}
	return ex
}
