package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deepgram/parley/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("key not found")

type Service struct {
	client *redis.Client
}

// NewService connects using REDIS_URL and REDIS_PASSWORD. It returns nil when
// redis is not configured or not reachable so callers fall back to memory.
func NewService() *Service {
	url := config.GetRedisURL()
	if url == "" {
		return nil
	}

	return Connect(context.Background(), url, config.GetRedisPassword())
}

// Connect accepts either a redis:// URL or a bare host:port address
func Connect(ctx context.Context, url, password string) *Service {
	opts := &redis.Options{Addr: url, Password: password}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Error().Err(err).Msg("Invalid Redis URL - service will be unavailable")
			return nil
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", opts.Addr).
			Msg("Failed to establish Redis connection")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return &Service{client: client}
}

// Set stores a value in Redis with an optional expiration
func (s *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.client.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Dur("expiration", expiration).
			Msg("Redis SET operation failed")
		return err
	}
	return nil
}

// Get retrieves a value from Redis, returning ErrNotFound for a missing key
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis GET operation failed")
		return "", err
	}
	return val, nil
}

// Delete removes a key from Redis
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
