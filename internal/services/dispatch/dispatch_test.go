package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	got   models.Prompt
}

func (s *stubProvider) Complete(ctx context.Context, prompt models.Prompt) (string, error) {
	s.got = prompt
	return s.reply, s.err
}

func TestExchangeSuccess(t *testing.T) {
	p := &stubProvider{reply: "**hello**"}
	ex := Exchange(context.Background(), p, models.Prompt{System: "s", User: "wrapped hi"}, "hi")

	assert.False(t, ex.Failed)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "hi"}, ex.User)
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: "**hello**"}, ex.Assistant)
	assert.Equal(t, "wrapped hi", p.got.User)
}

func TestExchangeFallback(t *testing.T) {
	p := &stubProvider{err: errors.New("connection refused")}
	ex := Exchange(context.Background(), p, models.Prompt{User: "hi"}, "hi")

	assert.True(t, ex.Failed)
	assert.Equal(t, "hi", ex.User.Content)
	assert.Equal(t, models.FallbackReply, ex.Assistant.Content)
	assert.Equal(t, models.RoleAssistant, ex.Assistant.Role)
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	release, err := g.TryAcquire("s1", "chat")
	require.NoError(t, err)
	assert.True(t, g.InFlight("s1", "chat"))

	_, err = g.TryAcquire("s1", "chat")
	assert.ErrorIs(t, err, ErrInFlight)

	// other flows and sessions are independent
	otherFlow, err := g.TryAcquire("s1", "document")
	require.NoError(t, err)
	otherSession, err := g.TryAcquire("s2", "chat")
	require.NoError(t, err)

	release()
	release()
	assert.False(t, g.InFlight("s1", "chat"))

	again, err := g.TryAcquire("s1", "chat")
	require.NoError(t, err)
	again()
	otherFlow()
	otherSession()
}

func TestGuardConcurrentAcquire(t *testing.T) {
	g := NewGuard()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.TryAcquire("s", "chat"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
