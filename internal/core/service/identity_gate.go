package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// IdentityGate resolves the credential carried by a request into an
// AuthenticatedContext. It performs no writes and is safe to run on every
// protected request.
type IdentityGate struct {
	extractors []ports.CredentialExtractor
	codec      ports.TokenCodec
	users      ports.CredentialStore
	log        zerolog.Logger
}

// NewIdentityGate builds a gate that tries extractors in the given order and
// uses the first credential found.
func NewIdentityGate(codec ports.TokenCodec, users ports.CredentialStore, log zerolog.Logger, extractors ...ports.CredentialExtractor) *IdentityGate {
	return &IdentityGate{
		extractors: extractors,
		codec:      codec,
		users:      users,
		log:        log,
	}
}

// Resolve returns the caller's identity, or an error wrapping
// domain.ErrMissingCredential, domain.ErrInvalidCredential,
// domain.ErrUnknownSubject or domain.ErrStoreUnavailable.
func (g *IdentityGate) Resolve(r *http.Request) (*domain.AuthenticatedContext, error) {
	raw, transport := g.extract(r)
	if raw == "" {
		return nil, g.reject("missing_credential", domain.ErrMissingCredential)
	}

	claim, err := g.codec.Verify(raw)
	if err != nil {
		g.log.Debug().Err(err).Str("transport", transport).Msg("token rejected")
		return nil, g.reject("invalid_credential", fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err))
	}

	user, err := g.lookup(r.Context(), claim)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, g.reject("unknown_subject", domain.ErrUnknownSubject)
		}
		g.log.Error().Err(err).Msg("credential store lookup failed")
		return nil, g.reject("store_unavailable", err)
	}

	metrics.AuthResolvedTotal.WithLabelValues(transport).Inc()
	return &domain.AuthenticatedContext{
		UserID: user.ID,
		Email:  user.Email,
		Phone:  user.Phone,
	}, nil
}

// extract walks the extractors in priority order. A failing transport is
// logged and skipped so the next one still gets a chance.
func (g *IdentityGate) extract(r *http.Request) (token, transport string) {
	for _, ex := range g.extractors {
		tok, err := ex.Extract(r)
		if err != nil {
			g.log.Warn().Err(err).Str("transport", ex.Name()).Msg("credential transport unavailable")
			continue
		}
		if tok != "" {
			return tok, ex.Name()
		}
	}
	return "", ""
}

// lookup treats the user id as authoritative when the claim carries one and
// falls back to the email for legacy email-only tokens.
func (g *IdentityGate) lookup(ctx context.Context, claim domain.Claim) (*domain.User, error) {
	if claim.UserID != "" {
		return g.users.FindByID(ctx, claim.UserID)
	}
	return g.users.FindByEmail(ctx, claim.Email)
}

func (g *IdentityGate) reject(reason string, err error) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	return err
}
