package redis

// Package redis provides Redis-based adapters for the rolegate system.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records session IDs invalidated before their natural
// expiry. A signed token cannot be destroyed once issued, so sign-out writes
// the token's ID here with a TTL equal to the token's remaining lifetime;
// after that the token is expired anyway and the entry is dropped.
type RevocationStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRevocationStore creates a Redis-backed revocation store.
func NewRevocationStore(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{
		client: client,
		prefix: "revoked:",
	}
}

// NewRevocationStoreWithPrefix creates a revocation store with a custom key prefix.
func NewRevocationStoreWithPrefix(client redis.UniversalClient, prefix string) *RevocationStore {
	return &RevocationStore{
		client: client,
		prefix: prefix,
	}
}

// Revoke marks a session ID as invalid until the given time.
func (s *RevocationStore) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := time.Until(until)
	if ttl <= 0 {
		// Token is already expired; nothing to record.
		return nil
	}

	key := s.prefix + sessionID
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// IsRevoked reports whether a session ID has been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	key := s.prefix + sessionID
	_, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get: %w", err)
	}
	return true, nil
}
