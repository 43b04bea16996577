package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func signMap(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestJWTCodec_IssueVerify(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)

	tok, exp, err := c.Issue(domain.Claim{UserID: "u1", Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claim, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claim.UserID != "u1" || claim.Email != "alice@example.com" {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestJWTCodec_IssueRequiresEmail(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	if _, _, err := c.Issue(domain.Claim{UserID: "u1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestJWTCodec_Expired(t *testing.T) {
	c := NewJWTCodec("secret", time.Minute)
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, _, err := c.Issue(domain.Claim{UserID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c.now = time.Now
	if _, err := c.Verify(tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	issuer := NewJWTCodec("secret-a", time.Hour)
	verifier := NewJWTCodec("secret-b", time.Hour)

	tok, _, _ := issuer.Issue(domain.Claim{Email: "a@example.com"})
	if _, err := verifier.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "a@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := c.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTCodec_Malformed(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	if _, err := c.Verify("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTCodec_MissingExpiry(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	tok := signMap(t, "secret", jwt.MapClaims{"email": "a@example.com"})
	if _, err := c.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTCodec_ClaimShapes(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	c := NewJWTCodec("secret", time.Hour)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   domain.Claim
	}{
		{
			name:   "legacy email subject",
			claims: jwt.MapClaims{"sub": "Bob@Example.com", "exp": exp},
			want:   domain.Claim{Email: "bob@example.com"},
		},
		{
			name: "object subject",
			claims: jwt.MapClaims{
				"sub": map[string]interface{}{"user_id": "u9", "email": "bob@example.com"},
				"exp": exp,
			},
			want: domain.Claim{UserID: "u9", Email: "bob@example.com"},
		},
		{
			name:   "top-level claims",
			claims: jwt.MapClaims{"sub": "u7", "user_id": "u7", "email": "carol@example.com", "exp": exp},
			want:   domain.Claim{UserID: "u7", Email: "carol@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Verify(signMap(t, "secret", tt.claims))
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestJWTCodec_ClaimWithoutEmail(t *testing.T) {
	c := NewJWTCodec("secret", time.Hour)
	tok := signMap(t, "secret", jwt.MapClaims{
		"sub": map[string]interface{}{"user_id": "u1"},
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := c.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
