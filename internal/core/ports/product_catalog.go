package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ProductCatalog is the read-only view of the product store. FindByID returns
// domain.ErrProductNotFound when the id does not resolve, and
// domain.ErrInvalidProductID when it is malformed.
type ProductCatalog interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}
