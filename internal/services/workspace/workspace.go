package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deepgram/parley/internal/domain/models"
	"github.com/deepgram/parley/internal/infrastructure/redis"
	"github.com/rs/zerolog/log"
)

// Flow names one of the two independent experiences
type Flow string

const (
	FlowChat     Flow = "chat"
	FlowDocument Flow = "document"
)

// State is everything one browser session holds across both flows
type State struct {
	Chat     models.Transcript      `json:"chat"`
	Document models.Transcript      `json:"document"`
	Context  models.DocumentContext `json:"context"`
	Notices  []models.Notice        `json:"notices,omitempty"`
}

// Transcript returns the transcript owned by a flow
func (s *State) Transcript(flow Flow) *models.Transcript {
	if flow == FlowDocument {
		return &s.Document
	}
	return &s.Chat
}

// Notify queues a notice for the next render
func (s *State) Notify(n models.Notice) {
	s.Notices = append(s.Notices, n)
}

// TakeNotices returns and clears the queued notices
func (s *State) TakeNotices() []models.Notice {
	out := s.Notices
	s.Notices = nil
	return out
}

// Store persists per-session state. Load of an unknown session returns an empty State.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Delete(ctx context.Context, sessionID string) error
	// Update applies fn to the session's state and saves it atomically with
	// respect to other updates of the same session in this process
	Update(ctx context.Context, sessionID string, fn func(*State) error) error
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serialises updates per session id. An entry lives only while
// someone holds or waits on it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedEntry)
	}
	e, ok := k.entries[id]
	if !ok {
		e = &keyedEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// NewStore prefers redis and falls back to process memory
func NewStore(redisService *redis.Service, lifetime time.Duration) Store {
	if redisService != nil {
		if err := redisService.Ping(context.Background()); err == nil {
			log.Info().Msg("Workspace state stored in Redis")
			return &RedisStore{redisService: redisService, lifetime: lifetime}
		}
	}
	log.Info().Msg("Workspace state stored in memory")
	return NewMemoryStore()
}

// RedisStore keeps state as JSON with the session lifetime as TTL
type RedisStore struct {
	redisService *redis.Service
	lifetime     time.Duration
	locks        keyedMutex
}

func key(sessionID string) string {
	return "parley:workspace:" + sessionID
}

func (rs *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := rs.redisService.Get(ctx, key(sessionID))
	if errors.Is(err, redis.ErrNotFound) {
		return &State{}, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return &state, nil
}

func (rs *RedisStore) Save(ctx context.Context, sessionID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, key(sessionID), string(data), rs.lifetime)
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, key(sessionID))
}

func (rs *RedisStore) Update(ctx context.Context, sessionID string, fn func(*State) error) error {
	unlock := rs.locks.lock(sessionID)
	defer unlock()

	state, err := rs.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return rs.Save(ctx, sessionID, state)
}

// MemoryStore keeps deep copies so callers never share slices
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (ms *MemoryStore) Load(ctx context.Context, sessionID string) (*State, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	state, ok := ms.states[sessionID]
	if !ok {
		return &State{}, nil
	}
	c := clone(state)
	return &c, nil
}

func (ms *MemoryStore) Save(ctx context.Context, sessionID string, state *State) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.states[sessionID] = clone(*state)
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.states, sessionID)
	return nil
}

func (ms *MemoryStore) Update(ctx context.Context, sessionID string, fn func(*State) error) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	state := clone(ms.states[sessionID])
	if err := fn(&state); err != nil {
		return err
	}
	ms.states[sessionID] = clone(state)
	return nil
}

func clone(s State) State {
	return State{
		Chat:     models.Transcript{Messages: s.Chat.Snapshot()},
		Document: models.Transcript{Messages: s.Document.Snapshot()},
		Context:  s.Context,
		Notices:  append([]models.Notice(nil), s.Notices...),
	}
}
