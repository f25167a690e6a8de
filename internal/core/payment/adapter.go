// Package payment contains the provider-facing half of the payment-integrity
// pipeline: callback adapters, the adapter registry and the webhook
// signature verifier.
package payment

import (
	"strings"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// CallbackAdapter encapsulates the two per-provider decision points: how to
// build the bytes the provider signed, and which free-text statuses count as
// a successful payment. New providers implement exactly these methods;
// shared pipeline code never branches on a provider name.
type CallbackAdapter interface {
	// Provider is the identifier the registry resolves, e.g. "RAZORPAY".
	Provider() string
	// Fallback reports whether this adapter also handles unknown or blank
	// provider names. Exactly one registered adapter must return true.
	Fallback() bool
	// SignaturePayload builds the bytes the HMAC is computed over.
	SignaturePayload(cb domain.PaymentCallback, tx *domain.PaymentTransaction) []byte
	// IsSuccessStatus classifies the provider's free-text status.
	IsSuccessStatus(rawStatus string) bool
}

// normalizeProvider is the single canonical form for provider names across
// the registry and the secret map.
func normalizeProvider(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
