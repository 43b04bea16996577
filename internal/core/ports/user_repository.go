package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// CredentialStore is the read side used by the identity gate. Both lookups
// return the {id, email, phone} projection only; the password hash never
// leaves this boundary. A missing user is domain.ErrUserNotFound.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// UserRepository adds the registration and login needs on top of CredentialStore.
type UserRepository interface {
	CredentialStore
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindAccountByEmail returns the full record, password hash included.
	FindAccountByEmail(ctx context.Context, email string) (*domain.User, error)
}
