// Package metrics defines and registers all custom Prometheus metrics for the
// merchant app runtime. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on import through
// promauto; the router exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "merchant"

// ── Session gate ──────────────────────────────────────────────────────────────

// GateTransitionsTotal counts processed identity snapshots.
// Label:
//   - state: the gate state the snapshot classified into (e.g. "authorized")
var GateTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_transitions_total",
		Help:      "Total number of identity snapshots processed by the session gate.",
	},
	[]string{"state"},
)

// GateRedirectsTotal counts automatic redirects issued by the gate and the
// setup check.
// Label:
//   - target: destination route (e.g. "/login")
var GateRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_redirects_total",
		Help:      "Total number of automatic redirects, by target route.",
	},
	[]string{"target"},
)

// GateDroppedChecksTotal counts manual re-entry checks dropped because a
// transition was already in flight.
var GateDroppedChecksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_dropped_checks_total",
		Help:      "Manual gate checks dropped while another transition was in flight.",
	},
)

// SessionQueueDepth tracks snapshots waiting in the emission pump.
var SessionQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_queue_depth",
		Help:      "Current number of identity snapshots pending in the emission pump.",
	},
)

// ── Business setup ────────────────────────────────────────────────────────────

// WizardStepsCompletedTotal counts wizard advancements.
// Label:
//   - step: the step that was completed (e.g. "categories")
var WizardStepsCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wizard_steps_completed_total",
		Help:      "Total number of business-setup steps completed.",
	},
	[]string{"step"},
)

// CategoryBatchItemsTotal counts default-category writes by outcome.
// Label:
//   - result: "created" or "skipped"
var CategoryBatchItemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_batch_items_total",
		Help:      "Default category writes in best-effort batches, by result.",
	},
	[]string{"result"},
)

// ── Backend ───────────────────────────────────────────────────────────────────

// BackendRequestsTotal counts REST backend calls.
// Labels:
//   - endpoint: logical endpoint name (e.g. "accept_order")
//   - outcome: "ok", "api_error", "malformed", "network"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of REST backend requests, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures REST backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of REST backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersAcceptedTotal counts accept attempts.
// Label:
//   - result: "accepted", "duplicate", "failed"
var OrdersAcceptedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_accepted_total",
		Help:      "Total number of order accept attempts, by result.",
	},
	[]string{"result"},
)
