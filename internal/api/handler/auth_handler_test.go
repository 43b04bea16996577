package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubSessionStore struct {
	created map[string]string
	deleted []string
	err     error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{created: make(map[string]string)}
}

func (s *stubSessionStore) Create(_ context.Context, token string, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	id := "sess-1"
	s.created[id] = token
	return id, nil
}

func (s *stubSessionStore) Token(_ context.Context, id string) (string, error) {
	return s.created[id], nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func authResult() *ports.AuthResult {
	return &ports.AuthResult{
		Token:     "token123",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &domain.User{ID: "u1", Email: "alice@example.com", Phone: "+1555"},
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			return ck
		}
	}
	return nil
}

const validRegisterBody = `{"first_name":"Alice","last_name":"Doe","email":"alice@example.com","phone":"+1555","password":"secret1"}`

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	sessions := newStubSessionStore()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.FirstName != "Alice" || in.Phone != "+1555" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return authResult(), nil
		},
	}
	handler := NewAuthHandler(stub, sessions, middleware.CookieOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", validRegisterBody), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}

	ck := sessionCookie(rec)
	if ck == nil || ck.Value != "sess-1" || !ck.HttpOnly {
		t.Fatalf("expected session cookie, got %+v", ck)
	}
	if sessions.created["sess-1"] != "token123" {
		t.Fatalf("session not stored")
	}
}

func TestAuthHandler_Register_ValidationFails(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, newStubSessionStore(), middleware.CookieOptions{}, zerolog.Nop())

	body := `{"first_name":"Alice","last_name":"Doe","email":"not-an-email","phone":"+1555","password":"secret1"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", body), httptest.NewRecorder())

	err := handler.Register(c)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected message to name the field, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, newStubSessionStore(), middleware.CookieOptions{}, zerolog.Nop())

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", "not-json"), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := handler.Register(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, newStubSessionStore(), middleware.CookieOptions{}, zerolog.Nop())

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", validRegisterBody), httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return authResult(), nil
		},
	}
	handler := NewAuthHandler(stub, newStubSessionStore(), middleware.CookieOptions{Secure: true}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ck := sessionCookie(rec); ck == nil || !ck.Secure {
		t.Fatalf("expected secure session cookie, got %+v", ck)
	}
}

func TestAuthHandler_Login_SessionStoreDown(t *testing.T) {
	e := newEcho()
	sessions := newStubSessionStore()
	sessions.err = errors.New("redis down")
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) { return authResult(), nil },
	}
	handler := NewAuthHandler(stub, sessions, middleware.CookieOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie expected without a session")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		e := newEcho()
		stub := &stubAuthService{
			loginFn: func(context.Context, string, string) (*ports.AuthResult, error) { return nil, want },
		}
		handler := NewAuthHandler(stub, newStubSessionStore(), middleware.CookieOptions{}, zerolog.Nop())
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x"}`), httptest.NewRecorder())

		if err := handler.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	sessions := newStubSessionStore()
	handler := NewAuthHandler(&stubAuthService{}, sessions, middleware.CookieOptions{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "sess-9"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "sess-9" {
		t.Fatalf("expected session deleted, got %v", sessions.deleted)
	}
	if len(rec.Result().Cookies()) != 2 {
		t.Fatalf("expected both cookies cleared")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, newStubSessionStore(), middleware.CookieOptions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), rec)
	middleware.SetIdentity(c, &domain.AuthenticatedContext{UserID: "u1", Email: "alice@example.com"})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp domain.AuthenticatedContext
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.UserID != "u1" || resp.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", resp)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())
	if err := handler.Me(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without identity, got %v", err)
	}
}
