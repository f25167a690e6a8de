package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
	"github.com/societyhub/backoffice-api/internal/core/ratelimit"
)

type recordingAudit struct {
	events []ports.AuditEvent
}

func (a *recordingAudit) Record(e ports.AuditEvent) {
	a.events = append(a.events, e)
}

type failingStore struct{}

func (failingStore) IncrementAndGet(context.Context, domain.RateLimitKey, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doThrottled(t *testing.T, mw echo.MiddlewareFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLoginThrottle_TripsWithStructuredBody(t *testing.T) {
	audit := &recordingAudit{}
	mw := LoginThrottle(ThrottleConfig{
		Store:       ratelimit.NewStore(time.Minute),
		MaxAttempts: 2,
		Routes:      []string{"/auth/login"},
		Audit:       audit,
	})

	for i := 0; i < 2; i++ {
		if rec := doThrottled(t, mw, "/auth/login"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d within limit: got %d", i+1, rec.Code)
		}
	}

	rec := doThrottled(t, mw, "/auth/login")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: want 429, got %d", rec.Code)
	}

	var body throttledResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message == "" || body.ErrorCode != "RATE_LIMITED" {
		t.Fatalf("unexpected throttle body: %+v", body)
	}

	if len(audit.events) != 1 || audit.events[0].Kind != ports.AuditRateLimitTrip {
		t.Fatalf("expected one rate-limit audit event, got %+v", audit.events)
	}
}

func TestLoginThrottle_NonListedRoutePassesThrough(t *testing.T) {
	mw := LoginThrottle(ThrottleConfig{
		Store:       ratelimit.NewStore(time.Minute),
		MaxAttempts: 1,
		Routes:      []string{"/auth/login"},
	})

	for i := 0; i < 5; i++ {
		if rec := doThrottled(t, mw, "/api/payments/initiate"); rec.Code != http.StatusOK {
			t.Fatalf("non-listed route throttled on attempt %d: %d", i+1, rec.Code)
		}
	}
}

// The allow-list is exact match: a prefix or sub-path of a listed route is
// not throttled.
func TestLoginThrottle_ExactMatchOnly(t *testing.T) {
	mw := LoginThrottle(ThrottleConfig{
		Store:       ratelimit.NewStore(time.Minute),
		MaxAttempts: 1,
		Routes:      []string{"/auth/login"},
	})

	for _, path := range []string{"/auth/login/extra", "/auth", "/auth/login2"} {
		for i := 0; i < 3; i++ {
			if rec := doThrottled(t, mw, path); rec.Code != http.StatusOK {
				t.Fatalf("%s throttled but is not an exact match: %d", path, rec.Code)
			}
		}
	}
}

func TestLoginThrottle_FailsOpenOnStoreError(t *testing.T) {
	mw := LoginThrottle(ThrottleConfig{
		Store:       failingStore{},
		MaxAttempts: 1,
		Routes:      []string{"/auth/login"},
	})

	for i := 0; i < 3; i++ {
		if rec := doThrottled(t, mw, "/auth/login"); rec.Code != http.StatusOK {
			t.Fatalf("store error must fail open, got %d", rec.Code)
		}
	}
}

func TestLoginThrottle_ClientsCountedSeparately(t *testing.T) {
	mw := LoginThrottle(ThrottleConfig{
		Store:       ratelimit.NewStore(time.Minute),
		MaxAttempts: 1,
		Routes:      []string{"/auth/login"},
		ClientID: func(c echo.Context) string {
			return c.Request().Header.Get("X-Test-Client")
		},
	})

	e := echo.New()
	attempt := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Test-Client", client)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(okHandler)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	if code := attempt("a"); code != http.StatusOK {
		t.Fatalf("client a first attempt: %d", code)
	}
	if code := attempt("a"); code != http.StatusTooManyRequests {
		t.Fatalf("client a second attempt: want 429, got %d", code)
	}
	if code := attempt("b"); code != http.StatusOK {
		t.Fatalf("client b must have its own counter, got %d", code)
	}
}
