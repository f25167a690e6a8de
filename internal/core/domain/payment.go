package domain

import (
	"errors"
	"time"
)

// TransactionStatus represents the lifecycle state of a gateway transaction.
// SUCCEEDED and FAILED are terminal; a transaction never leaves a terminal
// state.
type TransactionStatus string

const (
	TxInitiated TransactionStatus = "INITIATED"
	TxSucceeded TransactionStatus = "SUCCEEDED"
	TxFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	return s == TxSucceeded || s == TxFailed
}

var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrSignatureMissing    = errors.New("webhook signature missing")
	ErrSecretNotConfigured = errors.New("no webhook secret configured for provider")
)

// PaymentTransaction records one payment attempt against an external gateway.
// The transaction reference is the idempotency key: a replayed webhook for an
// already-terminal transaction is a no-op.
type PaymentTransaction struct {
	ID               string
	TenantID         string
	Reference        string // unique, assigned at initiation
	BillReference    string
	Provider         string
	GatewayOrderID   string
	GatewayPaymentID string
	Amount           int64 // minor units
	Currency         string
	PaymentMode      string
	Status           TransactionStatus
	RawPayload       string
	FailureReason    string
	InitiatedBy      string
	VerifiedBy       string
	VerifiedAt       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PaymentCallback is the provider's webhook body after binding, together with
// the supplied signature. The provider identifier itself travels out of band
// (route parameter).
type PaymentCallback struct {
	TransactionRef   string
	GatewayOrderID   string
	GatewayPaymentID string
	Status           string
	Payload          string
	Signature        string
}
