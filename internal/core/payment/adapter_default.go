package payment

import (
	"strings"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// DefaultAdapter handles any provider without a dedicated adapter. Its
// payload is the pipe-joined concatenation of the transaction reference,
// gateway order id, gateway payment id, status and raw payload, each
// trimmed, with absent fields as empty strings.
type DefaultAdapter struct{}

func (DefaultAdapter) Provider() string { return "DEFAULT" }

func (DefaultAdapter) Fallback() bool { return true }

func (DefaultAdapter) SignaturePayload(cb domain.PaymentCallback, tx *domain.PaymentTransaction) []byte {
	parts := []string{
		tx.Reference,
		cb.GatewayOrderID,
		cb.GatewayPaymentID,
		cb.Status,
		cb.Payload,
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return []byte(strings.Join(parts, "|"))
}

func (DefaultAdapter) IsSuccessStatus(rawStatus string) bool {
	switch strings.ToUpper(strings.TrimSpace(rawStatus)) {
	case "SUCCESS", "PAID":
		return true
	}
	return false
}
