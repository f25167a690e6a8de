// Package metrics defines all custom Prometheus metrics for the back-office
// API. It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthRejectionsTotal counts rejected tokens at the auth middleware.
// Label:
//   - reason: "expired", "revoked" or "invalid"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected for an invalid, expired or revoked token.",
	},
	[]string{"reason"},
)

// RateLimitTripsTotal counts requests short-circuited by the login throttle.
// Label:
//   - route: the throttled route path
var RateLimitTripsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_trips_total",
		Help:      "Total number of requests rejected by the login throttle.",
	},
	[]string{"route"},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhookCallbacksTotal counts processed provider callbacks.
// Labels:
//   - provider: normalized provider name (adapter identity)
//   - result: "verified", "replayed" or "rejected"
var WebhookCallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_callbacks_total",
		Help:      "Total number of payment provider callbacks, by provider and outcome.",
	},
	[]string{"provider", "result"},
)

// WebhookProcessingDuration measures end-to-end callback processing time.
// Label:
//   - provider: normalized provider name
var WebhookProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "webhook_processing_duration_seconds",
		Help:      "Duration of webhook callback processing from bind to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)
