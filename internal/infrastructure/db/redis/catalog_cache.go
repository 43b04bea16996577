package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	catalogPrefix     = "catalog:product:"
	defaultCatalogTTL = 30 * time.Second
)

// CachedCatalog is a read-through cache in front of a ProductCatalog. Only
// hits are cached; a Redis failure falls back to the underlying catalog.
type CachedCatalog struct {
	next   ports.ProductCatalog
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedCatalog(next ports.ProductCatalog, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CachedCatalog{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedCatalog) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	key := catalogPrefix + id

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		c.log.Warn().Str("product_id", id).Msg("discarding undecodable cached product")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("product_id", id).Msg("catalog cache read failed")
	}

	p, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.log.Warn().Err(setErr).Str("product_id", id).Msg("catalog cache write failed")
		}
	}
	return p, nil
}

// List is not cached; listings are rare compared to per-line price lookups.
func (c *CachedCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return c.next.List(ctx)
}
