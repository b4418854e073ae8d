package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/deepgram/parley/internal/config"
	"github.com/deepgram/parley/internal/infrastructure/redis"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoSession is returned when a request carries no valid, known session
var ErrNoSession = errors.New("no valid session")

type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionClaims
}

type Service struct {
	store    SessionStore
	lifetime time.Duration
	secure   bool
}

func NewService(redisService *redis.Service) *Service {
	var store SessionStore
	if redisService != nil && redisService.Ping(context.Background()) == nil {
		store = &RedisStore{redisService: redisService}
	} else {
		store = newMemoryStore()
	}

	return &Service{
		store:    store,
		lifetime: config.GetSessionLifetime(),
		secure:   config.GetSessionCookieSecure(),
	}
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionClaims),
	}
}

func sessionKey(sessionID string) string {
	return "parley:session:" + sessionID
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, sessionKey(sessionID), string(data), ttl)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := rs.redisService.Get(ctx, sessionKey(sessionID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, sessionKey(sessionID))
}

// Memory Store implementation; expiry is enforced by the JWT itself
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[sessionID] = claims
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	claims, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return claims, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// CreateSession starts a fresh session, sets its cookie and returns its id
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter) (string, error) {
	now := time.Now()
	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
		SessionID: sessionID,
	}

	if err := s.store.Set(ctx, sessionID, claims, s.lifetime); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  now.Add(s.lifetime),
	})

	log.Debug().Str("session_id", sessionID).Msg("Session created")
	return sessionID, nil
}

func parseToken(value string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// ValidateSession returns the claims of the request's session or ErrNoSession
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		return nil, ErrNoSession
	}

	claims, err := parseToken(cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}

	// Verify session exists in store
	storedClaims, err := s.store.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if storedClaims == nil {
		return nil, ErrNoSession
	}

	return claims, nil
}

// ClearSession removes the session cookie and from storage, returning the
// id that was cleared if there was one
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) string {
	var cleared string
	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil {
		if claims, err := parseToken(cookie.Value); err == nil {
			_ = s.store.Delete(r.Context(), claims.SessionID)
			cleared = claims.SessionID
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return cleared
}
