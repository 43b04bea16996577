package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const idempotencyTTL = 10 * time.Minute

// IdempotencyGuard remembers client-supplied Idempotency-Key values.
// Key format: idem:<scope>:<key>
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard creates a guard whose keys expire after ttl
// (idempotencyTTL when ttl <= 0).
func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = idempotencyTTL
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Claim records the key and reports true on first use, false on a replay.
func (g *IdempotencyGuard) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(scope, key), "1", g.ttl).Result()
	if err != nil {
		return false, domain.StoreError("idempotency claim", err)
	}
	return ok, nil
}

// Release deletes a claimed key. Releasing an unknown key is not an error.
func (g *IdempotencyGuard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, g.key(scope, key)).Err(); err != nil {
		return domain.StoreError("idempotency release", err)
	}
	return nil
}

func (g *IdempotencyGuard) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
