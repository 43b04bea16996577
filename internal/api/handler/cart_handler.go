package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// CartHandler handles the authenticated shopper's cart.
type CartHandler struct {
	service ports.CartService
	idem    ports.IdempotencyGuard
	log     zerolog.Logger
}

// NewCartHandler wires the handler. idem may be nil, in which case the
// Idempotency-Key header is ignored.
func NewCartHandler(service ports.CartService, idem ports.IdempotencyGuard, log zerolog.Logger) *CartHandler {
	return &CartHandler{service: service, idem: idem, log: log}
}

// Get handles GET /cart.
//
// @Summary      View cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	view, err := h.service.ViewCart(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// AddItem handles POST /cart/items.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Replays with the same key are not applied twice"
// @Param        body             body      addItemRequest  true   "Product and quantity (default 1)"
// @Success      200              {object}  totalResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx := c.Request().Context()
	scope := "cart:" + id.UserID
	key := c.Request().Header.Get(idempotencyHeader)
	if key != "" && h.idem != nil {
		first, err := h.idem.Claim(ctx, scope, key)
		if err != nil {
			return err
		}
		if !first {
			h.log.Info().Str("user_id", id.UserID).Str("idempotency_key", key).Msg("duplicate add ignored")
			cart, err := h.service.GetCart(ctx, id.UserID)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, totalResponse{TotalPrice: cart.TotalPrice})
		}
	}

	total, err := h.service.AddItem(ctx, id.UserID, req.ProductID, quantity)
	if err != nil {
		if key != "" && h.idem != nil {
			// A failed add must stay retryable under the same key.
			if rerr := h.idem.Release(context.WithoutCancel(ctx), scope, key); rerr != nil {
				h.log.Warn().Err(rerr).Str("user_id", id.UserID).Str("idempotency_key", key).Msg("idempotency key not released")
			}
		}
		return err
	}
	return c.JSON(http.StatusOK, totalResponse{TotalPrice: total})
}

// SetQuantity handles PUT /cart/items/:product_id.
//
// @Summary      Set the quantity of a cart line
// @Description  A quantity of zero or less removes the line. Missing lines are left alone.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string              true  "Product id"
// @Param        body        body      setQuantityRequest  true  "New quantity"
// @Success      200         {object}  totalResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /cart/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	total, err := h.service.SetQuantity(c.Request().Context(), id.UserID, c.Param("product_id"), *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, totalResponse{TotalPrice: total})
}

// RemoveItem handles DELETE /cart/items/:product_id.
//
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string  true  "Product id"
// @Success      200         {object}  totalResponse
// @Failure      401         {object}  errorResponse
// @Router       /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	total, err := h.service.RemoveItem(c.Request().Context(), id.UserID, c.Param("product_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, totalResponse{TotalPrice: total})
}

// Clear handles DELETE /cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.ClearCart(c.Request().Context(), id.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Recompute handles POST /cart/recompute.
//
// @Summary      Reprice the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  totalResponse
// @Failure      401  {object}  errorResponse
// @Router       /cart/recompute [post]
func (h *CartHandler) Recompute(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	total, err := h.service.RecomputeTotal(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, totalResponse{TotalPrice: total})
}
