package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/api/metrics"
	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
	"github.com/societyhub/backoffice-api/internal/core/service"
	"github.com/societyhub/backoffice-api/internal/core/tenant"
)

// Auth verifies the bearer token and binds the resulting principal to the
// request context. Downstream handlers read the tenant through the tenant
// package; the binding lives only as long as the request, so nothing can
// leak into a later request on the same connection.
func Auth(signer ports.TokenSigner, audit ports.AuditSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			principal, err := signer.Verify(c.Request().Context(), service.StripBearer(header))
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				audit.Record(ports.AuditEvent{
					Kind:       ports.AuditTokenRejected,
					Route:      c.Path(),
					RemoteAddr: c.RealIP(),
					Detail:     err.Error(),
					At:         time.Now().UTC(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := tenant.NewContext(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	default:
		return "invalid"
	}
}
