package ports

import (
	"context"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// TerminalUpdate carries the fields written when a transaction leaves
// INITIATED. The repository applies it as a single atomic update guarded by
// the current status, so two concurrent webhook deliveries cannot both win.
type TerminalUpdate struct {
	Status        domain.TransactionStatus
	RawPayload    string
	FailureReason string
	VerifiedBy    string
	VerifiedAt    time.Time
}

// PaymentRepository persists gateway transactions keyed by their unique
// transaction reference.
type PaymentRepository interface {
	FindByReference(ctx context.Context, ref string) (*domain.PaymentTransaction, error)
	// MarkTerminal transitions the referenced transaction out of INITIATED.
	// It returns false (and no error) when the transaction was already
	// terminal, which callers treat as an idempotent replay.
	MarkTerminal(ctx context.Context, ref string, update TerminalUpdate) (bool, error)
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
}
