// Package metrics defines and registers all custom Prometheus metrics for the
// user service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// UsersCreatedTotal counts users persisted by Save.
// Label:
//   - role: the role description of the new user
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// UsersDeletedTotal counts deletions.
// Label:
//   - mode: "soft" (governed delete) or "purge" (hard delete)
var UsersDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deleted_total",
		Help:      "Total number of users deleted, by mode.",
	},
	[]string{"mode"},
)

// DeletionsRejectedTotal counts governed deletions refused by a business rule.
// Label:
//   - reason: the rule's reason ("User not found", "User can not be deleted")
var DeletionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletions_rejected_total",
		Help:      "Total number of governed deletions rejected by a business rule.",
	},
	[]string{"reason"},
)

// ── Identity sync metrics ─────────────────────────────────────────────────────

// IdentitySyncTotal counts identity-provider jobs by outcome.
// Labels:
//   - kind: "create" or "deactivate"
//   - result: "ok", "failed" (retries exhausted) or "rejected" (queue full)
var IdentitySyncTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_sync_total",
		Help:      "Total number of identity provider sync jobs, by kind and result.",
	},
	[]string{"kind", "result"},
)

// IdentityQueueDepth tracks the number of jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var IdentityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "identity_queue_depth",
		Help:      "Current number of identity sync jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// IdentitySyncDuration measures a job end-to-end, retries included.
// Label:
//   - kind: "create" or "deactivate"
var IdentitySyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_sync_duration_seconds",
		Help:      "Duration of identity provider sync jobs including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
