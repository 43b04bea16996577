package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// CartRepository persists one Cart document per user.
type CartRepository interface {
	// GetOrCreate returns the user's cart, atomically creating an empty one on
	// first access. Concurrent first accesses must yield a single document.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)

	// Save writes items and total if the stored version still equals
	// cart.Version, then bumps the version on both sides. A mismatch is
	// domain.ErrCartConflict.
	Save(ctx context.Context, cart *domain.Cart) error
}

// KeySerializer runs fn so that calls sharing a key never overlap within
// this process. fn must not call Do itself.
type KeySerializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// IdempotencyGuard claims a client-supplied key once per scope. Claim returns
// false when the key was already used. Release forgets a claimed key so the
// request it guarded can be retried after failing.
type IdempotencyGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}
