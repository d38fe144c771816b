package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client address in fixed windows.
// Key format: ratelimit:<addr>
type RateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing max requests per window.
func NewRateLimiter(client *redis.Client, max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = 100
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{client: client, max: int64(max), window: window}
}

// Allow increments the caller's counter and reports whether the request fits
// within the current window. The first hit of a window sets its expiry.
func (l *RateLimiter) Allow(ctx context.Context, addr string) (bool, error) {
	key := l.key(addr)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= l.max, nil
}

func (l *RateLimiter) key(addr string) string {
	return "ratelimit:" + addr
}
