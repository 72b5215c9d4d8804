package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "hms:session:revoked:"

// RedisRevocationStore keeps revoked token ids in Redis with a TTL matching
// the token's remaining lifetime.
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a Redis-backed revocation store.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	if client == nil {
		panic("session: redis client required")
	}
	return &RedisRevocationStore{client: client}
}

// Revoke marks a token id as logged out.
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id has been logged out.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("session: redis exists: %w", err)
	}
	return n > 0, nil
}

// InMemoryRevocationStore is a stub implementation for tests and single-node
// development runs without Redis.
type InMemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewInMemoryRevocationStore creates an in-memory revocation store.
func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{revoked: make(map[string]time.Time)}
}

// Revoke marks a token id as logged out until its expiry.
func (s *InMemoryRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	s.revoked[jti] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

// IsRevoked reports whether a token id has been logged out.
func (s *InMemoryRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.revoked[jti]
	return ok && time.Now().Before(until), nil
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*InMemoryRevocationStore)(nil)
)
