package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// CartLineView is one cart line joined with its current catalog entry.
// Product is nil when the product no longer resolves.
type CartLineView struct {
	ProductID string
	Quantity  int
	Product   *domain.Product
	LineTotal float64
}

// CartView is the cart as shown to the shopper.
type CartView struct {
	UserID     string
	Items      []CartLineView
	TotalPrice float64
}

// CartService is the cart aggregate. Every mutator returns the freshly
// recomputed total.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ViewCart(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (float64, error)
	RemoveItem(ctx context.Context, userID, productID string) (float64, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (float64, error)
	ClearCart(ctx context.Context, userID string) error
	RecomputeTotal(ctx context.Context, userID string) (float64, error)
}
