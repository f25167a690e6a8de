package ports

import "time"

// Audit event kinds emitted by the security pipeline.
const (
	AuditTokenRejected    = "token_rejected"
	AuditTokenIssueFailed = "token_issue_failed"
	AuditRateLimitTrip    = "rate_limit_trip"
	AuditWebhookVerified  = "webhook_verified"
	AuditWebhookRejected  = "webhook_rejected"
	AuditWebhookReplay    = "webhook_replay"
)

// AuditEvent captures enough context for incident investigation. Never
// include secrets or signing keys.
type AuditEvent struct {
	Kind       string
	Provider   string
	Reference  string
	Route      string
	RemoteAddr string
	Detail     string
	At         time.Time
}

// AuditSink receives security-relevant events. Record is fire-and-forget:
// implementations must never block the request path, and a full or failed
// sink must not fail the request.
type AuditSink interface {
	Record(event AuditEvent)
}
