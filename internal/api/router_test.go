package api

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	redisstore "github.com/storefront/storefront-api/internal/infrastructure/db/redis"
)

type fixedCatalog struct{}

func (fixedCatalog) FindByID(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func (fixedCatalog) List(context.Context) ([]domain.Product, error) {
	return nil, nil
}

func TestCatalogs_CartPricingBypassesCache(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	browse, pricing := catalogs(fixedCatalog{}, rdb, 30*time.Second, zerolog.Nop())

	if _, ok := browse.(*redisstore.CachedCatalog); !ok {
		t.Fatalf("expected /products to be served through the cache, got %T", browse)
	}
	if _, ok := pricing.(fixedCatalog); !ok {
		t.Fatalf("expected carts to be priced against the store directly, got %T", pricing)
	}
}
