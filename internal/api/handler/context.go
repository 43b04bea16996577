package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Authenticate middleware.
// A protected route reached without one is treated as a missing credential.
func ctxIdentity(c echo.Context) (*domain.AuthenticatedContext, error) {
	id := middleware.Identity(c)
	if id == nil || id.UserID == "" {
		return nil, domain.ErrMissingCredential
	}
	return id, nil
}
