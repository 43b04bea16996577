package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// TokenCodec issues and verifies signed identity tokens. Verify fails with
// domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenCodec interface {
	Issue(claim domain.Claim) (token string, expiresAt time.Time, err error)
	Verify(token string) (domain.Claim, error)
}

// PasswordHasher is the opaque hashing capability. Compare returns
// domain.ErrInvalidCredentials on mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// CredentialExtractor pulls a raw token out of one transport of a request.
// An absent credential is ("", nil); an error means the transport itself
// failed (for example the session store is down).
type CredentialExtractor interface {
	Name() string
	Extract(r *http.Request) (string, error)
}

// SessionStore keeps server-side sessions that carry an identity token.
// Token returns ("", nil) for an unknown or expired session.
type SessionStore interface {
	Create(ctx context.Context, token string, ttl time.Duration) (sessionID string, err error)
	Token(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
