// Package metrics defines the domain Prometheus metrics of the content API.
// Metrics are registered with the default registry on import via promauto;
// per-route HTTP metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "content"

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential issuance attempts.
// Labels:
//   - op: "login", "signup" or "refresh"
//   - result: "ok" or "rejected"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential issuance attempts.",
	},
	[]string{"op", "result"},
)

// ── Content ───────────────────────────────────────────────────────────────────

// ContentMutationsTotal counts successful writes to posts and sermons.
// Labels:
//   - kind: "post" or "sermon"
//   - action: "created", "updated", "deleted", "pinned", "unpinned"
var ContentMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of content mutations.",
	},
	[]string{"kind", "action"},
)

// PinRejectionsTotal counts pin requests refused by the cap or by lock
// contention.
// Label:
//   - reason: "limit" or "conflict"
var PinRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pin_rejections_total",
		Help:      "Total number of pin requests rejected.",
	},
	[]string{"reason"},
)

// AuditDroppedTotal counts audit events discarded because a dispatcher
// shard was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full queue.",
	},
)
