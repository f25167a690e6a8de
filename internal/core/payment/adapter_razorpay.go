package payment

import (
	"strings"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// RazorpayAdapter signs over "<order_id>|<payment_id>" when both gateway ids
// are present, matching Razorpay's documented signature scheme, and falls
// back to the generic payload otherwise. Razorpay reports captured payments
// as "captured".
type RazorpayAdapter struct {
	DefaultAdapter
}

func (RazorpayAdapter) Provider() string { return "RAZORPAY" }

func (RazorpayAdapter) Fallback() bool { return false }

func (a RazorpayAdapter) SignaturePayload(cb domain.PaymentCallback, tx *domain.PaymentTransaction) []byte {
	orderID := strings.TrimSpace(cb.GatewayOrderID)
	paymentID := strings.TrimSpace(cb.GatewayPaymentID)
	if orderID != "" && paymentID != "" {
		return []byte(orderID + "|" + paymentID)
	}
	return a.DefaultAdapter.SignaturePayload(cb, tx)
}

func (a RazorpayAdapter) IsSuccessStatus(rawStatus string) bool {
	if strings.EqualFold(strings.TrimSpace(rawStatus), "CAPTURED") {
		return true
	}
	return a.DefaultAdapter.IsSuccessStatus(rawStatus)
}
