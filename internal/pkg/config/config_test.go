package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	var cfg Config
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(env),
	})
	return &cfg, err
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "storefront" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 360*time.Hour {
		t.Fatalf("expected 15 day token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Cart.CatalogCacheTTL != 30*time.Second {
		t.Fatalf("unexpected cart defaults: %+v", cfg.Cart)
	}
}

func TestConfig_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":        "s3cret",
		"COOKIE_SECURE":     "true",
		"CATALOG_CACHE_TTL": "5s",
		"LOG_PRETTY":        "true",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Auth.CookieSecure || cfg.Cart.CatalogCacheTTL != 5*time.Second || !cfg.LogPretty {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestConfig_SecretRequired(t *testing.T) {
	if _, err := load(t, map[string]string{}); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}
