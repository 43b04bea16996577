package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	// SessionCookie holds the opaque server-side session id.
	SessionCookie = "storefront_session"
	// AccessTokenCookie carries a raw JWT; kept for clients of the old frontend.
	AccessTokenCookie = "access_token_cookie"
)

// CookieOptions defines how identity cookies are issued.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteStrictMode
	}
	return o
}

// SetSessionCookie issues the session cookie to the client.
func SetSessionCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     opts.Path,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearIdentityCookies expires both the session and the access-token cookie.
func ClearIdentityCookies(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	for _, name := range []string{SessionCookie, AccessTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     opts.Path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
	}
}

// BearerHeader reads "Authorization: Bearer <token>". Any other scheme counts
// as no credential.
type BearerHeader struct{}

func (BearerHeader) Name() string { return "bearer_header" }

func (BearerHeader) Extract(r *http.Request) (string, error) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", nil
	}
	return strings.TrimSpace(parts[1]), nil
}

// SessionCredential resolves the session cookie through the session store.
type SessionCredential struct {
	Store ports.SessionStore
}

func (SessionCredential) Name() string { return "session" }

func (s SessionCredential) Extract(r *http.Request) (string, error) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return "", nil
	}
	return s.Store.Token(r.Context(), ck.Value)
}

// AccessCookie reads a JWT stored directly in a cookie.
type AccessCookie struct{}

func (AccessCookie) Name() string { return "access_cookie" }

func (AccessCookie) Extract(r *http.Request) (string, error) {
	ck, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(ck.Value), nil
}

// DefaultExtractors returns the transports in priority order.
func DefaultExtractors(sessions ports.SessionStore) []ports.CredentialExtractor {
	return []ports.CredentialExtractor{
		BearerHeader{},
		SessionCredential{Store: sessions},
		AccessCookie{},
	}
}
