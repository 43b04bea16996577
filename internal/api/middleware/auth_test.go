package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
)

type stubResolver struct {
	id  *domain.AuthenticatedContext
	err error
}

func (s stubResolver) Resolve(*http.Request) (*domain.AuthenticatedContext, error) {
	return s.id, s.err
}

type stubSessions struct {
	tokens map[string]string
	err    error
}

func (s stubSessions) Create(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (s stubSessions) Token(_ context.Context, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tokens[id], nil
}

func (s stubSessions) Delete(context.Context, string) error { return nil }

func TestAuthenticate_SetsIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	want := &domain.AuthenticatedContext{UserID: "u1", Email: "alice@example.com"}
	called := false
	handler := Authenticate(stubResolver{id: want})(func(c echo.Context) error {
		called = true
		if got := Identity(c); got != want {
			t.Fatalf("identity not set, got %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_RejectionStopsChain(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(stubResolver{err: domain.ErrMissingCredential})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestIdentity_Absent(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if Identity(c) != nil {
		t.Fatalf("expected nil identity")
	}
}
