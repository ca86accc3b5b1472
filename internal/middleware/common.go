package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

type Options struct {
	Logger          *slog.Logger
	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Setup installs the cross-cutting middleware chain shared by every route.
func Setup(e *echo.Echo, o Options) {
	e.Pre(echomw.RemoveTrailingSlash())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: NewRequestID}))
	e.Use(RequestLogger(o.Logger))
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     o.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if o.RateLimitMax > 0 && o.RateLimitWindow > 0 {
		e.Use(RateLimit(o.RateLimitMax, o.RateLimitWindow))
	}
}

// NewRequestID returns a lexically sortable request id.
func NewRequestID() string {
	return ulid.Make().String()
}

// RateLimit allows max requests per window for each client IP. Health and
// metrics probes are not counted.
func RateLimit(max int, window time.Duration) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/health") || p == "/metrics"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}
