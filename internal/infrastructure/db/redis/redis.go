package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPingTimeout = 5 * time.Second
	defaultPoolSize    = 10
)

// Config carries the connection settings for the rate-limit counter store.
// The same client also backs the readiness probe.
type Config struct {
	Addr        string
	DB          int
	PoolSize    int
	PingTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = defaultPingTimeout
	}
	return c
}

// Connect opens the client used for request counting and verifies it answers
// before the API starts taking traffic.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	cfg = cfg.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		ClientName: "natours",
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
