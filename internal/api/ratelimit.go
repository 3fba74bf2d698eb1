package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once the shared token bucket of
// limit requests per second and burst size is empty. limit <= 0 disables
// the check.
func RateLimit(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(limit), max(burst, 1))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			r := limiter.Reserve()
			if !r.OK() {
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "rate limit exceeded")
			}
			if delay := r.Delay(); delay > 0 {
				r.Cancel()
				secs := int(delay.Seconds()) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "rate limit exceeded")
			}
			return next(c)
		}
	}
}
