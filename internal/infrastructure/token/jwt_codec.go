// Package token implements the identity TokenCodec on top of HS256 JWTs.
//
// Three claim shapes are accepted on verification and normalised into one
// domain.Claim:
//
//	{"sub": "a@b.c"}                                   legacy, email only
//	{"sub": {"user_id": "…", "email": "a@b.c"}}        object subject
//	{"sub": "<id>", "user_id": "<id>", "email": "…"}   issued by this service
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const defaultTTL = 15 * 24 * time.Hour

type identityClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies identity tokens with a shared secret.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for claim. The subject is the user id when known,
// otherwise the email.
func (c *JWTCodec) Issue(claim domain.Claim) (string, time.Time, error) {
	claim = claim.Normalize()
	if claim.Email == "" {
		return "", time.Time{}, fmt.Errorf("issue token: %w", domain.ErrInvalidInput)
	}

	now := c.now()
	exp := now.Add(c.ttl)
	sub := claim.UserID
	if sub == "" {
		sub = claim.Email
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		UserID: claim.UserID,
		Email:  claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry, then extracts the claim.
func (c *JWTCodec) Verify(raw string) (domain.Claim, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claim{}, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return domain.Claim{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claim := claimFromMap(claims).Normalize()
	if claim.Email == "" {
		return domain.Claim{}, fmt.Errorf("%w: no email in claim", domain.ErrTokenInvalid)
	}
	return claim, nil
}

func claimFromMap(m jwt.MapClaims) domain.Claim {
	var claim domain.Claim
	claim.UserID, _ = m["user_id"].(string)
	claim.Email, _ = m["email"].(string)

	switch sub := m["sub"].(type) {
	case string:
		if claim.Email == "" && claim.UserID == "" {
			claim.Email = sub
		}
	case map[string]interface{}:
		if claim.UserID == "" {
			claim.UserID, _ = sub["user_id"].(string)
		}
		if claim.Email == "" {
			claim.Email, _ = sub["email"].(string)
		}
	}
	return claim
}
