package ports

import (
	"context"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// RateLimitStore is a shared fixed-window counter. IncrementAndGet starts a
// new window when none is active (or the active one has elapsed) and returns
// the count for the window containing now. Implementations must not
// undercount under concurrent calls for the same key.
type RateLimitStore interface {
	IncrementAndGet(ctx context.Context, key domain.RateLimitKey, now time.Time) (int64, error)
}
