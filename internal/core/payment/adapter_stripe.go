package payment

import (
	"strings"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// StripeAdapter signs over the raw callback body verbatim when one is
// present, because Stripe computes its signature over the exact request
// body. Event-style statuses such as "payment_intent.succeeded" count as
// success.
type StripeAdapter struct {
	DefaultAdapter
}

func (StripeAdapter) Provider() string { return "STRIPE" }

func (StripeAdapter) Fallback() bool { return false }

func (a StripeAdapter) SignaturePayload(cb domain.PaymentCallback, tx *domain.PaymentTransaction) []byte {
	if raw := cb.Payload; raw != "" {
		return []byte(raw)
	}
	return a.DefaultAdapter.SignaturePayload(cb, tx)
}

func (a StripeAdapter) IsSuccessStatus(rawStatus string) bool {
	if strings.EqualFold(strings.TrimSpace(rawStatus), "PAYMENT_INTENT.SUCCEEDED") {
		return true
	}
	return a.DefaultAdapter.IsSuccessStatus(rawStatus)
}
