package service

import (
	"context"
	"strings"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// ProductService exposes the catalog to the HTTP layer.
type ProductService struct {
	catalog ports.ProductCatalog
}

func NewProductService(catalog ports.ProductCatalog) *ProductService {
	return &ProductService{catalog: catalog}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.List(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidProductID
	}
	return s.catalog.FindByID(ctx, id)
}
