package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/storefront/storefront-api/docs"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/infrastructure/crypto"
	mongorepo "github.com/storefront/storefront-api/internal/infrastructure/db/mongo"
	redisstore "github.com/storefront/storefront-api/internal/infrastructure/db/redis"
	"github.com/storefront/storefront-api/internal/infrastructure/token"
	"github.com/storefront/storefront-api/internal/pkg/config"
	"github.com/storefront/storefront-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// serializer orders same-user cart mutations; it may be nil.
func NewRouter(db *mongo.Database, rdb *goredis.Client, serializer ports.KeySerializer, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Dependencies ---
	users := mongorepo.NewUserRepository(db)
	codec := token.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessions := redisstore.NewSessionStore(rdb)
	browse, pricing := catalogs(mongorepo.NewProductRepository(db), rdb, cfg.Cart.CatalogCacheTTL, log)

	authService := service.NewAuthService(users, crypto.NewBcryptHasher(0), codec, logger.Component(log, "auth"))
	gate := service.NewIdentityGate(codec, users, logger.Component(log, "identity_gate"), middleware.DefaultExtractors(sessions)...)
	cartService := service.NewCartService(mongorepo.NewCartRepository(db), pricing, serializer, logger.Component(log, "cart"))
	productService := service.NewProductService(browse)

	cookies := middleware.CookieOptions{Secure: cfg.Auth.CookieSecure}
	authHandler := handler.NewAuthHandler(authService, sessions, cookies, log)
	cartHandler := handler.NewCartHandler(cartService, redisstore.NewIdempotencyGuard(rdb, 0), log)
	productHandler := handler.NewProductHandler(productService)
	requireIdentity := middleware.Authenticate(gate)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, requireIdentity)
	e.GET("/auth/me", authHandler.Me, requireIdentity)

	// --- Catalog ---
	e.GET("/products", productHandler.List)
	e.GET("/products/:id", productHandler.Get)

	// --- Cart (identity required) ---
	cart := e.Group("/cart", requireIdentity)
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:product_id", cartHandler.SetQuantity)
	cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
	cart.POST("/recompute", cartHandler.Recompute)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(map[string]handler.Pinger{
		"mongodb": handler.MongoPinger(db),
		"redis":   handler.RedisPinger(rdb),
	})

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// catalogs splits the product store into the cached view served by /products
// and the direct view carts are priced against, so a cart total never counts
// a product that was deleted or repriced within the cache TTL.
func catalogs(products ports.ProductCatalog, rdb *goredis.Client, ttl time.Duration, log zerolog.Logger) (browse, pricing ports.ProductCatalog) {
	return redisstore.NewCachedCatalog(products, rdb, ttl, log), products
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Msg("request")
			return nil
		},
	})
}
