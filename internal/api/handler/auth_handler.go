package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionStore
	cookies     middleware.CookieOptions
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionStore, cookies middleware.CookieOptions, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookies: cookies, log: log}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	h.startSession(c, res)
	return c.JSON(http.StatusCreated, authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.startSession(c, res)
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

// Logout ends the server-side session and clears identity cookies.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(middleware.SessionCookie); err == nil && ck.Value != "" {
		if err := h.sessions.Delete(c.Request().Context(), ck.Value); err != nil {
			h.log.Warn().Err(err).Msg("session delete failed")
		}
	}
	middleware.ClearIdentityCookies(c.Response(), h.cookies)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's identity.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthenticatedContext
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

// startSession stores the token server-side and sets the session cookie.
// Failure only costs the cookie; the token in the body still works.
func (h *AuthHandler) startSession(c echo.Context, res *ports.AuthResult) {
	sessionID, err := h.sessions.Create(c.Request().Context(), res.Token, time.Until(res.ExpiresAt))
	if err != nil {
		h.log.Warn().Err(err).Msg("session create failed, continuing without cookie")
		return
	}
	middleware.SetSessionCookie(c.Response(), sessionID, res.ExpiresAt, h.cookies)
}
