package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

const keyPrefix = "tarifa:document:"

// Config holds the Redis document cache settings. An empty Addr disables the cache.
type Config struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"       envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL"      envDefault:"10m"`
}

// Enabled reports whether a Redis address is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Addr != ""
}

// NewClient creates a Redis client from cfg.
func NewClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Source caches the documents of another ConfigSource in Redis.
// Redis failures are logged and the next source is used directly.
type Source struct {
	client *redis.Client
	next   domain.ConfigSource
	ttl    time.Duration
}

// NewSource wraps next with a Redis cache.
func NewSource(client *redis.Client, next domain.ConfigSource, ttl time.Duration) (*Source, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if next == nil {
		return nil, errors.New("next config source is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %s", ttl)
	}

	return &Source{client: client, next: next, ttl: ttl}, nil
}

// Fetch returns the cached document or fetches and caches it.
// Missing documents are not cached.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	logger := observability.FromContext(ctx)
	key := keyPrefix + name

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		logger.Debug("document cache hit", observability.String("key", key))
		return data, nil
	case errors.Is(err, redis.Nil):
		logger.Debug("document cache miss", observability.String("key", key))
	default:
		logger.Warn("document cache read failed",
			observability.String("key", key),
			observability.Error(err))
	}

	data, err = s.next.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	if setErr := s.client.Set(ctx, key, data, s.ttl).Err(); setErr != nil {
		logger.Warn("document cache write failed",
			observability.String("key", key),
			observability.Error(setErr))
	}

	return data, nil
}

// Invalidate drops the cached copies of the named documents.
func (s *Source) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, name := range names {
		pipe.Del(ctx, keyPrefix+name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate documents: %w", err)
	}

	observability.FromContext(ctx).Info("document cache invalidated",
		observability.Int("documents", len(names)))

	return nil
}
