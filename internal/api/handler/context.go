package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/tenant"
)

// ctxPrincipal extracts the principal bound by the Auth middleware and
// performs a fast-fail check before any service call: a request reaching a
// protected handler without a bound principal means the middleware did not
// run, which is a wiring bug surfaced as 401, never a silent pass.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := tenant.PrincipalFromContext(c.Request().Context())
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// ctxTenant returns the tenant the request is scoped to. Platform root
// principals carry no tenant; handlers that require one reject the request.
func ctxTenant(c echo.Context) (string, error) {
	tenantID, err := tenant.FromContext(c.Request().Context())
	if err != nil {
		return "", echo.NewHTTPError(http.StatusForbidden, "request is not scoped to a tenant")
	}
	return tenantID, nil
}
