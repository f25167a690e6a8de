package ports

import (
	"context"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// WebhookResult reports the outcome of processing one provider callback.
type WebhookResult struct {
	Reference string
	Status    domain.TransactionStatus
	// Replayed is true when the transaction was already terminal and the
	// delivery was treated as an idempotent no-op.
	Replayed bool
}

// WebhookService runs the full callback pipeline: adapter resolution,
// signature verification, status classification and the guarded terminal
// transition.
type WebhookService interface {
	ProcessCallback(ctx context.Context, provider, remoteAddr string, cb domain.PaymentCallback) (WebhookResult, error)
}
