package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/man7ober/natours/internal/metrics"
)

// AddrLimiter decides whether a client address may proceed inside the
// current window.
type AddrLimiter interface {
	Allow(ctx context.Context, addr string) (bool, error)
}

// RateLimit caps requests per client IP. When the limiter backend is
// unreachable the request is let through so the API does not fail closed
// on an infrastructure hiccup.
func RateLimit(limiter AddrLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr := c.RealIP()

			allowed, err := limiter.Allow(c.Request().Context(), addr)
			if err != nil {
				log.Warn().Err(err).Str("addr", addr).Msg("rate limiter unavailable")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again in an hour!")
			}
			return next(c)
		}
	}
}
