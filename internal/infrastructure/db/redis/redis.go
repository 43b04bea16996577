package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	// Session lookups sit on every authenticated request; a slow Redis must
	// surface as an outage quickly rather than stall the gate.
	defaultOpTimeout = 500 * time.Millisecond
)

// Config describes the Redis instance holding sessions, idempotency keys and
// the product cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds connecting and the startup ping.
	DialTimeout time.Duration
	// OpTimeout bounds each read and write once connected.
	OpTimeout time.Duration
}

func (c Config) options() *redis.Options {
	dial := c.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	op := c.OpTimeout
	if op <= 0 {
		op = defaultOpTimeout
	}
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  dial,
		ReadTimeout:  op,
		WriteTimeout: op,
	}
}

// Connect opens the client and pings it once. The client is closed again
// when the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
