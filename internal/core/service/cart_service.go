package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	defaultMaxAttempts = 5
	pricingConcurrency = 8
)

// CartService owns the per-user cart aggregate. Every mutation reads the
// cart, applies the change in memory, reprices all lines and saves with a
// version check; on conflict the whole cycle is repeated.
type CartService struct {
	carts       ports.CartRepository
	catalog     ports.ProductCatalog
	serializer  ports.KeySerializer
	log         zerolog.Logger
	maxAttempts int
}

// NewCartService wires the service. A nil serializer runs mutations directly
// on the caller's goroutine, leaving ordering to the version check alone.
func NewCartService(carts ports.CartRepository, catalog ports.ProductCatalog, serializer ports.KeySerializer, log zerolog.Logger) *CartService {
	if serializer == nil {
		serializer = directSerializer{}
	}
	return &CartService{
		carts:       carts,
		catalog:     catalog,
		serializer:  serializer,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.carts.GetOrCreate(ctx, userID)
}

// ViewCart joins every line with its current catalog entry. The returned
// total is computed from the same lookups so it always matches the lines
// shown; the stored total is left untouched.
func (s *CartService) ViewCart(ctx context.Context, userID string) (*ports.CartView, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := s.lookupProducts(ctx, cart.Items)
	view := &ports.CartView{
		UserID: cart.UserID,
		Items:  make([]ports.CartLineView, 0, len(cart.Items)),
	}
	for i, it := range cart.Items {
		line := ports.CartLineView{ProductID: it.ProductID, Quantity: it.Quantity, Product: products[i]}
		if p := products[i]; p != nil {
			line.LineTotal = roundCents(p.Price * float64(it.Quantity))
			view.TotalPrice += p.Price * float64(it.Quantity)
		}
		view.Items = append(view.Items, line)
	}
	view.TotalPrice = roundCents(view.TotalPrice)
	return view, nil
}

// AddItem merges quantity into the line for productID and returns the new total.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (float64, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return 0, domain.ErrInvalidProductID
	}
	cart, err := s.mutate(ctx, "add", userID, func(c *domain.Cart) error {
		return c.AddItem(productID, quantity)
	})
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice, nil
}

// RemoveItem drops the line for productID. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (float64, error) {
	cart, err := s.mutate(ctx, "remove", userID, func(c *domain.Cart) error {
		c.RemoveItem(strings.TrimSpace(productID))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice, nil
}

// SetQuantity overwrites an existing line; quantity <= 0 removes it and a
// missing line is left alone.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (float64, error) {
	cart, err := s.mutate(ctx, "set_quantity", userID, func(c *domain.Cart) error {
		c.SetQuantity(strings.TrimSpace(productID), quantity)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice, nil
}

// ClearCart empties the cart but keeps the document.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, "clear", userID, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

// RecomputeTotal reprices the cart against the current catalog.
func (s *CartService) RecomputeTotal(ctx context.Context, userID string) (float64, error) {
	cart, err := s.mutate(ctx, "recompute", userID, func(*domain.Cart) error { return nil })
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice, nil
}

func (s *CartService) mutate(ctx context.Context, op, userID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}

	var saved *domain.Cart
	err := s.serializer.Do(ctx, userID, func(ctx context.Context) error {
		for attempt := 1; attempt <= s.maxAttempts; attempt++ {
			cart, err := s.carts.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			if err := apply(cart); err != nil {
				return err
			}
			cart.TotalPrice = s.total(ctx, cart.Items)

			err = s.carts.Save(ctx, cart)
			if errors.Is(err, domain.ErrCartConflict) {
				metrics.CartConflictsTotal.Inc()
				s.log.Debug().Str("user_id", userID).Str("op", op).Int("attempt", attempt).Msg("cart version conflict, retrying")
				continue
			}
			if err != nil {
				return err
			}
			saved = cart
			return nil
		}
		return domain.ErrCartConflict
	})

	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues(op, "error").Inc()
		if !isClientError(err) {
			s.log.Error().Err(err).Str("user_id", userID).Str("op", op).Msg("cart mutation failed")
		}
		return nil, err
	}

	metrics.CartMutationsTotal.WithLabelValues(op, "ok").Inc()
	s.log.Info().
		Str("user_id", userID).
		Str("op", op).
		Int("lines", len(saved.Items)).
		Float64("total_price", saved.TotalPrice).
		Msg("cart updated")
	return saved, nil
}

// total prices every line; lines whose product cannot be resolved add nothing.
func (s *CartService) total(ctx context.Context, items []domain.CartItem) float64 {
	products := s.lookupProducts(ctx, items)
	var sum float64
	for i, it := range items {
		if p := products[i]; p != nil {
			sum += p.Price * float64(it.Quantity)
		}
	}
	return roundCents(sum)
}

// lookupProducts resolves each line independently. A failed lookup leaves a
// nil entry and never aborts the others.
func (s *CartService) lookupProducts(ctx context.Context, items []domain.CartItem) []*domain.Product {
	start := time.Now()
	defer func() { metrics.CartRecomputeDuration.Observe(time.Since(start).Seconds()) }()

	products := make([]*domain.Product, len(items))
	var g errgroup.Group
	g.SetLimit(pricingConcurrency)
	for i, it := range items {
		g.Go(func() error {
			p, err := s.catalog.FindByID(ctx, it.ProductID)
			switch {
			case err == nil:
				products[i] = p
			case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrInvalidProductID):
				metrics.CartPriceLookupFailuresTotal.WithLabelValues("not_found").Inc()
				s.log.Debug().Str("product_id", it.ProductID).Msg("cart line product no longer exists")
			default:
				metrics.CartPriceLookupFailuresTotal.WithLabelValues("error").Inc()
				s.log.Warn().Err(err).Str("product_id", it.ProductID).Msg("price lookup failed, line priced at zero")
			}
			return nil
		})
	}
	_ = g.Wait()
	return products
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type directSerializer struct{}

func (directSerializer) Do(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
