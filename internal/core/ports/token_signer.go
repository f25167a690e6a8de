package ports

import (
	"context"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// TokenSigner issues and verifies the compact signed tokens that carry
// identity, tenant and role claims.
type TokenSigner interface {
	// Issue signs a token for a tenant-scoped user.
	Issue(subject, tenantID, role string, kind domain.TokenType, ttl time.Duration) (string, error)
	// IssueRoot signs a token for the platform root account. tokenVersion is
	// the account's current bulk-revocation counter.
	IssueRoot(subject string, tokenVersion int64, kind domain.TokenType, ttl time.Duration) (string, error)
	// Verify checks signature, expiry and structure, and reconstructs the
	// Principal. Root tokens older than the account's recorded token version
	// are rejected with domain.ErrTokenRevoked.
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// TokenVersionSource resolves the currently recorded token version for a root
// account subject. Implemented by the root account repository.
type TokenVersionSource interface {
	CurrentTokenVersion(ctx context.Context, subject string) (int64, error)
}
