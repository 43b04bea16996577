package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps server-side sessions. The value under session:<id> is
// the identity token itself; expiry is delegated to the Redis TTL.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create stores token under a fresh random session id.
func (s *SessionStore) Create(ctx context.Context, token string, ttl time.Duration) (string, error) {
	if token == "" {
		return "", fmt.Errorf("session: empty token")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("session: ttl must be positive")
	}

	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionPrefix+id, token, ttl).Err(); err != nil {
		return "", domain.StoreError("create session", err)
	}
	return id, nil
}

// Token returns the token stored for sessionID, or "" when there is none.
func (s *SessionStore) Token(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	val, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", domain.StoreError("load session", err)
	}
	return val, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return domain.StoreError("delete session", err)
	}
	return nil
}
