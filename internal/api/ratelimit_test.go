package api

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v5"
)

func TestRateLimit(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.Use(RateLimit(0.001, 2))
	e.GET("/ping", func(c *echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := range 2 {
		if rec := doJSON(t, e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d status %d", i, rec.Code)
		}
	}
	rec := doJSON(t, e, http.MethodGet, "/ping", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.Use(RateLimit(0, 0))
	e.GET("/ping", func(c *echo.Context) error { return c.NoContent(http.StatusNoContent) })
	for range 50 {
		if rec := doJSON(t, e, http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("status %d", rec.Code)
		}
	}
}
