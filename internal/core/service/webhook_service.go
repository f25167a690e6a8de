package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/payment"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

type webhookService struct {
	registry *payment.Registry
	verifier *payment.SignatureVerifier
	repo     ports.PaymentRepository
	audit    ports.AuditSink
	log      zerolog.Logger
}

// NewWebhookService wires the callback pipeline: adapter registry, signature
// verifier, transaction repository and the audit sink.
func NewWebhookService(
	registry *payment.Registry,
	verifier *payment.SignatureVerifier,
	repo ports.PaymentRepository,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{
		registry: registry,
		verifier: verifier,
		repo:     repo,
		audit:    audit,
		log:      log,
	}
}

// ProcessCallback verifies and applies a single provider callback.
// Verification always happens before any state mutation, and the terminal
// transition is a guarded atomic update, so a replayed or concurrently
// delivered webhook degrades to a no-op.
func (s *webhookService) ProcessCallback(ctx context.Context, provider, remoteAddr string, cb domain.PaymentCallback) (ports.WebhookResult, error) {
	adapter := s.registry.Resolve(provider)

	// 1. Load the transaction by its unique reference.
	tx, err := s.repo.FindByReference(ctx, cb.TransactionRef)
	if err != nil {
		return ports.WebhookResult{}, fmt.Errorf("process callback: %w", err)
	}

	// 2. Already terminal: idempotent replay, nothing to do.
	if tx.Status.IsTerminal() {
		s.log.Debug().
			Str("reference", tx.Reference).
			Str("provider", adapter.Provider()).
			Msg("webhook replay for terminal transaction skipped")
		s.audit.Record(ports.AuditEvent{
			Kind:       ports.AuditWebhookReplay,
			Provider:   adapter.Provider(),
			Reference:  tx.Reference,
			RemoteAddr: remoteAddr,
			At:         time.Now().UTC(),
		})
		return ports.WebhookResult{Reference: tx.Reference, Status: tx.Status, Replayed: true}, nil
	}

	// 3. Authenticate the message before touching any state.
	payloadBytes := adapter.SignaturePayload(cb, tx)
	if err := s.verifier.AssertValid(provider, payloadBytes, cb.Signature); err != nil {
		s.log.Warn().
			Str("reference", tx.Reference).
			Str("provider", adapter.Provider()).
			Str("remote_addr", remoteAddr).
			Err(err).
			Msg("webhook signature rejected")
		s.audit.Record(ports.AuditEvent{
			Kind:       ports.AuditWebhookRejected,
			Provider:   adapter.Provider(),
			Reference:  tx.Reference,
			RemoteAddr: remoteAddr,
			Detail:     err.Error(),
			At:         time.Now().UTC(),
		})
		return ports.WebhookResult{}, err
	}

	// 4. Classify the provider's free-text status.
	status := domain.TxFailed
	failureReason := ""
	if adapter.IsSuccessStatus(cb.Status) {
		status = domain.TxSucceeded
	} else {
		failureReason = cb.Status
	}

	// 5. Guarded terminal transition. The loser of a concurrent delivery
	// race observes applied == false and reports a replay.
	applied, err := s.repo.MarkTerminal(ctx, tx.Reference, ports.TerminalUpdate{
		Status:        status,
		RawPayload:    cb.Payload,
		FailureReason: failureReason,
		VerifiedBy:    "webhook:" + adapter.Provider(),
		VerifiedAt:    time.Now().UTC(),
	})
	if err != nil {
		return ports.WebhookResult{}, fmt.Errorf("process callback: mark terminal: %w", err)
	}
	if !applied {
		return ports.WebhookResult{Reference: tx.Reference, Status: tx.Status, Replayed: true}, nil
	}

	s.log.Info().
		Str("reference", tx.Reference).
		Str("provider", adapter.Provider()).
		Str("status", string(status)).
		Msg("webhook processed")
	s.audit.Record(ports.AuditEvent{
		Kind:       ports.AuditWebhookVerified,
		Provider:   adapter.Provider(),
		Reference:  tx.Reference,
		RemoteAddr: remoteAddr,
		Detail:     string(status),
		At:         time.Now().UTC(),
	})

	return ports.WebhookResult{Reference: tx.Reference, Status: status}, nil
}
