package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// IdentityResolver turns an inbound request into an authenticated identity
// or a domain.ErrUnauthorized rejection.
type IdentityResolver interface {
	Resolve(r *http.Request) (*domain.AuthenticatedContext, error)
}
