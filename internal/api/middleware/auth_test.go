package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
	"github.com/societyhub/backoffice-api/internal/core/service"
	"github.com/societyhub/backoffice-api/internal/core/tenant"
)

const authTestKey = "0123456789abcdef0123456789abcdef"

func newAuthMiddleware(t *testing.T) (echo.MiddlewareFunc, ports.TokenSigner, *recordingAudit) {
	t.Helper()
	signer, err := service.NewTokenSigner(authTestKey, nil)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	audit := &recordingAudit{}
	return Auth(signer, audit), signer, audit
}

func doAuth(t *testing.T, mw echo.MiddlewareFunc, authorization string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuth_ValidTokenBindsPrincipal(t *testing.T) {
	mw, signer, _ := newAuthMiddleware(t)

	token, err := signer.Issue("user_1", "tenant_5", domain.RoleAdmin, domain.TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen domain.Principal
	rec := doAuth(t, mw, "Bearer "+token, func(c echo.Context) error {
		p, ok := tenant.PrincipalFromContext(c.Request().Context())
		if !ok {
			t.Fatalf("principal not bound to request context")
		}
		seen = p
		return c.NoContent(http.StatusOK)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if seen.Subject != "user_1" || seen.TenantID != "tenant_5" || seen.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", seen)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	mw, _, _ := newAuthMiddleware(t)

	rec := doAuth(t, mw, "", func(c echo.Context) error {
		t.Fatalf("handler must not run without a token")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	mw, _, audit := newAuthMiddleware(t)

	rec := doAuth(t, mw, "Bearer not-a-token", func(c echo.Context) error {
		t.Fatalf("handler must not run with an invalid token")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if len(audit.events) != 1 || audit.events[0].Kind != ports.AuditTokenRejected {
		t.Fatalf("expected a token-rejected audit event, got %+v", audit.events)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	mw, signer, _ := newAuthMiddleware(t)

	token, err := signer.Issue("user_1", "tenant_5", domain.RoleAdmin, domain.TokenAccess, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := doAuth(t, mw, "Bearer "+token, func(c echo.Context) error {
		t.Fatalf("handler must not run with an expired token")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}
