package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing credential", domain.ErrMissingCredential, http.StatusUnauthorized},
		{"invalid credential", fmt.Errorf("%w: %v", domain.ErrInvalidCredential, domain.ErrTokenExpired), http.StatusUnauthorized},
		{"unknown subject", domain.ErrUnknownSubject, http.StatusUnauthorized},
		{"bad password", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"invalid input", fmt.Errorf("%w: email is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{"invalid product id", domain.ErrInvalidProductID, http.StatusBadRequest},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound},
		{"cart conflict", domain.ErrCartConflict, http.StatusConflict},
		{"store unavailable", domain.StoreError("find user", errors.New("timeout")), http.StatusServiceUnavailable},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestHTTPErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.StoreError("save cart", errors.New("mongo: no reachable servers")), c)

	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "service temporarily unavailable" {
		t.Fatalf("driver detail leaked: %q", resp.Error)
	}
}

func TestHTTPErrorHandler_UnauthorizedShowsOnlyReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: token invalid: token signature is invalid: signature is invalid", domain.ErrInvalidCredential), "invalid credential"},
		{domain.ErrMissingCredential, "missing credential"},
		{domain.ErrUnknownSubject, "unknown subject"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/cart", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		var resp errorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if rec.Code != http.StatusUnauthorized || resp.Error != tc.want {
			t.Fatalf("expected 401 %q, got %d %q", tc.want, rec.Code, resp.Error)
		}
	}
}
