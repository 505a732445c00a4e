package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/centralauth/centralauth/internal/api/metrics"
)

// Limiter abstracts the fixed-window rate limiter (Redis in production).
type Limiter interface {
	Allow(ctx context.Context, scope, subject string) (bool, error)
}

// RateLimit rejects requests exceeding the limiter's window for the caller's
// IP. On limiter failure the request proceeds: losing rate limiting is
// preferable to losing logins when Redis is down.
func RateLimit(limiter Limiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), scope, c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
