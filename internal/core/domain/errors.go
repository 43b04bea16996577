package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the umbrella for every identity rejection. The specific
// reasons below wrap it, so errors.Is(err, ErrUnauthorized) holds for all of them.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrMissingCredential = fmt.Errorf("%w: missing credential", ErrUnauthorized)
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthorized)
	ErrUnknownSubject    = fmt.Errorf("%w: unknown subject", ErrUnauthorized)
)

// Token verification failures. The gate folds both into ErrInvalidCredential.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrCartConflict     = errors.New("cart was modified concurrently")
)

// ErrStoreUnavailable marks failures of a backing store (Mongo, Redis). It is
// kept apart from the authorization and domain errors so callers can tell
// "not allowed" from "system unavailable".
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a driver error so that it matches ErrStoreUnavailable while
// keeping the original cause in the chain.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
