// Package metrics defines and registers the custom Prometheus metrics of the
// storefront API. It is the single source of truth for metric names, labels
// and help strings. Metrics register with the default registry on import;
// HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Identity metrics ─────────────────────────────────────────────────────────

// AuthRejectionsTotal counts requests the identity gate refused.
// Label:
//   - reason: "missing_credential", "invalid_credential", "unknown_subject", "store_unavailable"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the identity gate.",
	},
	[]string{"reason"},
)

// AuthResolvedTotal counts successful resolutions by the transport that
// carried the credential ("bearer_header", "session", "access_cookie").
var AuthResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_resolved_total",
		Help:      "Total number of requests authenticated, by credential transport.",
	},
	[]string{"transport"},
)

// ── Cart metrics ─────────────────────────────────────────────────────────────

// CartMutationsTotal counts completed cart mutations.
// Labels:
//   - op: "add", "remove", "set_quantity", "clear", "recompute"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// CartConflictsTotal counts optimistic-concurrency conflicts that forced a
// cart mutation to be re-applied.
var CartConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_conflicts_total",
		Help:      "Total number of cart version conflicts retried.",
	},
)

// CartPriceLookupFailuresTotal counts catalog lookups that failed while
// pricing a cart line.
// Label:
//   - reason: "not_found" (product gone) or "error" (catalog failure)
var CartPriceLookupFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_price_lookup_failures_total",
		Help:      "Total number of cart lines that contributed zero because the catalog lookup failed.",
	},
	[]string{"reason"},
)

// CartRecomputeDuration measures how long repricing a whole cart takes.
var CartRecomputeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_recompute_duration_seconds",
		Help:      "Duration of pricing every line of a cart against the catalog.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Serializer metrics ───────────────────────────────────────────────────────

// SerializerWaiting counts cart mutations waiting for an earlier mutation of
// the same user to finish.
var SerializerWaiting = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_waiting",
		Help:      "Current number of cart mutations queued behind another mutation of the same user.",
	},
)

// SerializerActiveKeys tracks users with a cart mutation running or queued.
var SerializerActiveKeys = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_active_keys",
		Help:      "Current number of users with a cart mutation running or queued.",
	},
)
