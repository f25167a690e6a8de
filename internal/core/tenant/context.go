// Package tenant propagates the authenticated principal and its tenant
// through the request-scoped context.Context. Binding to the request context
// (instead of any shared variable) makes cross-request leakage impossible by
// construction: the binding dies with the request.
package tenant

import (
	"context"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

type ctxKey struct{}

// NewContext returns a child context carrying the verified principal.
// Called exactly once per request, after token verification.
func NewContext(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the principal bound to ctx, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(domain.Principal)
	return p, ok
}

// FromContext returns the tenant the request is scoped to. Calling it on a
// context with no bound principal, or with a platform-level principal that
// carries no tenant, is surfaced as domain.ErrMissingTenant rather than an
// empty string that could silently mix tenant data.
func FromContext(ctx context.Context) (string, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.TenantID == "" {
		return "", domain.ErrMissingTenant
	}
	return p.TenantID, nil
}
