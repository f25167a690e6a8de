package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/payment"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

type stubPaymentRepo struct {
	tx         *domain.PaymentTransaction
	markCalls  int
	lastUpdate ports.TerminalUpdate
	forceNoOp  bool
}

func (r *stubPaymentRepo) Create(_ context.Context, tx *domain.PaymentTransaction) error {
	r.tx = tx
	return nil
}

func (r *stubPaymentRepo) FindByReference(_ context.Context, ref string) (*domain.PaymentTransaction, error) {
	if r.tx == nil || r.tx.Reference != ref {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *r.tx
	return &clone, nil
}

func (r *stubPaymentRepo) MarkTerminal(_ context.Context, ref string, update ports.TerminalUpdate) (bool, error) {
	r.markCalls++
	if r.forceNoOp || r.tx == nil || r.tx.Reference != ref || r.tx.Status.IsTerminal() {
		return false, nil
	}
	r.lastUpdate = update
	r.tx.Status = update.Status
	r.tx.RawPayload = update.RawPayload
	r.tx.FailureReason = update.FailureReason
	r.tx.VerifiedBy = update.VerifiedBy
	r.tx.VerifiedAt = update.VerifiedAt
	return true, nil
}

type captureAudit struct {
	events []ports.AuditEvent
}

func (a *captureAudit) Record(e ports.AuditEvent) {
	a.events = append(a.events, e)
}

func (a *captureAudit) kinds() []string {
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.Kind
	}
	return out
}

func hmacHex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookFixture(t *testing.T, secrets string, strict bool, tx *domain.PaymentTransaction) (ports.WebhookService, *stubPaymentRepo, *captureAudit) {
	t.Helper()

	registry, err := payment.NewRegistry(payment.DefaultAdapter{}, payment.RazorpayAdapter{}, payment.StripeAdapter{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	verifier := payment.NewSignatureVerifier(payment.ParseProviderSecrets(secrets), strict)

	repo := &stubPaymentRepo{tx: tx}
	audit := &captureAudit{}
	svc := NewWebhookService(registry, verifier, repo, audit, zerolog.Nop())
	return svc, repo, audit
}

func initiatedTx(ref string) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		Reference: ref,
		TenantID:  "tenant_1",
		Provider:  "RAZORPAY",
		Status:    domain.TxInitiated,
		CreatedAt: time.Now().UTC(),
	}
}

func TestWebhookService_SignedSuccess(t *testing.T) {
	svc, repo, audit := newWebhookFixture(t, "RAZORPAY=rzp_secret", true, initiatedTx("TXN-1"))

	cb := domain.PaymentCallback{
		TransactionRef:   "TXN-1",
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Status:           "captured",
	}
	cb.Signature = hmacHex("rzp_secret", []byte("order_1|pay_1"))

	res, err := svc.ProcessCallback(context.Background(), "razorpay", "203.0.113.9", cb)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Status != domain.TxSucceeded || res.Replayed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if repo.tx.Status != domain.TxSucceeded {
		t.Fatalf("transaction not marked succeeded: %s", repo.tx.Status)
	}
	if repo.lastUpdate.VerifiedBy != "webhook:RAZORPAY" {
		t.Fatalf("unexpected verifier identity: %q", repo.lastUpdate.VerifiedBy)
	}
	if got := audit.kinds(); len(got) != 1 || got[0] != ports.AuditWebhookVerified {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestWebhookService_FailureStatusRecordsReason(t *testing.T) {
	svc, repo, _ := newWebhookFixture(t, "", false, initiatedTx("TXN-2"))

	res, err := svc.ProcessCallback(context.Background(), "unknown-provider", "203.0.113.9", domain.PaymentCallback{
		TransactionRef: "TXN-2",
		Status:         "DECLINED_BY_BANK",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Status != domain.TxFailed {
		t.Fatalf("want FAILED, got %s", res.Status)
	}
	if repo.tx.FailureReason != "DECLINED_BY_BANK" {
		t.Fatalf("failure reason not recorded: %q", repo.tx.FailureReason)
	}
}

func TestWebhookService_BadSignatureRejectedBeforeStateChange(t *testing.T) {
	svc, repo, audit := newWebhookFixture(t, "RAZORPAY=rzp_secret", true, initiatedTx("TXN-3"))

	_, err := svc.ProcessCallback(context.Background(), "razorpay", "203.0.113.9", domain.PaymentCallback{
		TransactionRef:   "TXN-3",
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		Status:           "captured",
		Signature:        "deadbeef",
	})
	if !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	if repo.markCalls != 0 {
		t.Fatalf("state mutated despite invalid signature")
	}
	if repo.tx.Status != domain.TxInitiated {
		t.Fatalf("status changed despite invalid signature: %s", repo.tx.Status)
	}
	if got := audit.kinds(); len(got) != 1 || got[0] != ports.AuditWebhookRejected {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestWebhookService_StrictModeRejectsUnconfiguredProvider(t *testing.T) {
	svc, repo, _ := newWebhookFixture(t, "RAZORPAY=rzp_secret", true, initiatedTx("TXN-4"))

	_, err := svc.ProcessCallback(context.Background(), "UNCONFIGURED", "203.0.113.9", domain.PaymentCallback{
		TransactionRef: "TXN-4",
		Status:         "SUCCESS",
		Signature:      "anything",
	})
	if !errors.Is(err, domain.ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured, got %v", err)
	}
	if repo.markCalls != 0 {
		t.Fatalf("state mutated despite strict-mode rejection")
	}
}

func TestWebhookService_ReplayOnTerminalIsNoOp(t *testing.T) {
	tx := initiatedTx("TXN-5")
	tx.Status = domain.TxSucceeded
	tx.VerifiedBy = "webhook:RAZORPAY"
	verifiedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tx.VerifiedAt = verifiedAt

	svc, repo, audit := newWebhookFixture(t, "", false, tx)

	res, err := svc.ProcessCallback(context.Background(), "razorpay", "203.0.113.9", domain.PaymentCallback{
		TransactionRef: "TXN-5",
		Status:         "captured",
	})
	if err != nil {
		t.Fatalf("replay must not error: %v", err)
	}
	if !res.Replayed || res.Status != domain.TxSucceeded {
		t.Fatalf("unexpected replay result: %+v", res)
	}
	if repo.markCalls != 0 {
		t.Fatalf("replay attempted a state change")
	}
	if !repo.tx.VerifiedAt.Equal(verifiedAt) || repo.tx.VerifiedBy != "webhook:RAZORPAY" {
		t.Fatalf("replay altered verification metadata: %+v", repo.tx)
	}
	if got := audit.kinds(); len(got) != 1 || got[0] != ports.AuditWebhookReplay {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

// Two deliveries race: the loser of the guarded update observes a no-op and
// reports a replay instead of double-processing.
func TestWebhookService_ConcurrentDeliveryLoserIsReplay(t *testing.T) {
	svc, repo, _ := newWebhookFixture(t, "", false, initiatedTx("TXN-6"))
	repo.forceNoOp = true

	res, err := svc.ProcessCallback(context.Background(), "razorpay", "203.0.113.9", domain.PaymentCallback{
		TransactionRef: "TXN-6",
		Status:         "SUCCESS",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Replayed {
		t.Fatalf("loser of the update race must report a replay: %+v", res)
	}
}

func TestWebhookService_UnknownReference(t *testing.T) {
	svc, _, _ := newWebhookFixture(t, "", false, nil)

	_, err := svc.ProcessCallback(context.Background(), "razorpay", "203.0.113.9", domain.PaymentCallback{
		TransactionRef: "TXN-MISSING",
		Status:         "SUCCESS",
	})
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
