package ports

import (
	"context"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// RootAccountRepository persists the platform root account and its
// token-version revocation counter.
type RootAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.RootAccount, error)
	CurrentTokenVersion(ctx context.Context, subject string) (int64, error)
	// BumpTokenVersion increments the counter and returns the new value,
	// revoking every previously issued root token.
	BumpTokenVersion(ctx context.Context, id string) (int64, error)
}
