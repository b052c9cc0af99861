package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "travio:session:"
	DefaultTTL       = 24 * time.Hour
)

// RedisStore implements Store on top of Redis, scoped to a single session id.
// Every key lives at <prefix><sessionID>:<key> and carries the session TTL,
// refreshed on each write, so an idle session expires as a whole.
type RedisStore struct {
	db        redis.UniversalClient
	sessionID string
	prefix    string
	ttl       time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix. Empty prefixes are ignored.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets the session lifetime. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore creates a store bound to sessionID.
func NewRedisStore(client redis.UniversalClient, sessionID string, opts ...RedisOption) (*RedisStore, error) {
	if sessionID == "" {
		return nil, ErrNoSessionID
	}

	s := &RedisStore{
		db:        client,
		sessionID: sessionID,
		prefix:    DefaultKeyPrefix,
		ttl:       DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionID returns the id this store is scoped to
func (s *RedisStore) SessionID() string {
	return s.sessionID
}

func (s *RedisStore) key(key string) string {
	return s.prefix + s.sessionID + ":" + key
}

func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	n, err := s.db.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	val, err := s.db.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	if err := s.db.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if err := s.db.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
