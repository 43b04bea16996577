package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const identityKey = "identity"

// Authenticate resolves the caller's identity and injects it into context.
// Rejections are returned as errors and rendered by the central error handler.
func Authenticate(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolver.Resolve(c.Request())
			if err != nil {
				return err
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}

// SetIdentity stores id on the request context.
func SetIdentity(c echo.Context, id *domain.AuthenticatedContext) {
	c.Set(identityKey, id)
}

// Identity returns the AuthenticatedContext set by Authenticate, or nil.
func Identity(c echo.Context) *domain.AuthenticatedContext {
	id, _ := c.Get(identityKey).(*domain.AuthenticatedContext)
	return id
}
