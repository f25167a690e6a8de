package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/api/metrics"
	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

// ClientIDExtractor derives the identifier the throttle counts per client.
// The default uses echo's RealIP, which honors the configured trusted
// forwarded-for chain.
type ClientIDExtractor func(c echo.Context) string

// ThrottleConfig configures the login throttle.
type ThrottleConfig struct {
	Store       ports.RateLimitStore
	MaxAttempts int64
	// Routes is the exact-match, case-sensitive allow-list of throttled
	// paths. Every other route passes through untouched.
	Routes   []string
	ClientID ClientIDExtractor
	Audit    ports.AuditSink
}

type throttledResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// LoginThrottle limits attempts on auth-sensitive routes using a fixed
// window counter. When the limit is exceeded the request is short-circuited
// with a structured 429 and the downstream handler never runs. Store errors
// fail open: throttling is protection, not an availability dependency.
func LoginThrottle(cfg ThrottleConfig) echo.MiddlewareFunc {
	routes := make(map[string]struct{}, len(cfg.Routes))
	for _, r := range cfg.Routes {
		routes[r] = struct{}{}
	}
	clientID := cfg.ClientID
	if clientID == nil {
		clientID = func(c echo.Context) string { return c.RealIP() }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if _, sensitive := routes[path]; !sensitive {
				return next(c)
			}

			key := domain.RateLimitKey{Route: path, ClientID: clientID(c)}
			count, err := cfg.Store.IncrementAndGet(c.Request().Context(), key, time.Now())
			if err != nil {
				return next(c)
			}

			if count > cfg.MaxAttempts {
				metrics.RateLimitTripsTotal.WithLabelValues(path).Inc()
				if cfg.Audit != nil {
					cfg.Audit.Record(ports.AuditEvent{
						Kind:       ports.AuditRateLimitTrip,
						Route:      path,
						RemoteAddr: key.ClientID,
						At:         time.Now().UTC(),
					})
				}
				return c.JSON(http.StatusTooManyRequests, throttledResponse{
					Success:   false,
					Message:   "Too many login attempts, please try again later",
					ErrorCode: "RATE_LIMITED",
				})
			}

			return next(c)
		}
	}
}
