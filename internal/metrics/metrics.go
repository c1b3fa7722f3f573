// Package metrics provides Prometheus metrics for Starlane: counters,
// gauges, and histograms for waves, exchanges, hops, search, and health,
// on the same promauto-registered-at-package-init shape the teacher's own
// internal/infra/metrics package uses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Waves ──────────────────────────────────────────────────────────────────

// WavesDispatched tracks directed waves dispatched to a Core handler, by
// method kind (Hyp/Cmd/Ext/Http).
var WavesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "waves_dispatched_total",
	Help:      "Total directed waves dispatched to a Core handler.",
}, []string{"method_kind"})

// WaveDispatchLatency tracks how long a Core handler takes to produce a
// CoreBounce, by method kind.
var WaveDispatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "starlane",
	Name:      "wave_dispatch_latency_seconds",
	Help:      "Core handler dispatch duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method_kind"})

// ─── Exchanges ──────────────────────────────────────────────────────────────

// ExchangesOpened tracks reflection slots opened by the exchanger.
var ExchangesOpened = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "exchanges_opened_total",
	Help:      "Total reflection-correlation slots opened.",
})

// ExchangesCompleted tracks how exchanges finished: satisfied, timed out,
// or dropped by the caller.
var ExchangesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "exchanges_completed_total",
	Help:      "Total reflection-correlation slots completed, by outcome.",
}, []string{"outcome"})

// ExchangesPending tracks the current number of open reflection slots.
var ExchangesPending = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "starlane",
	Name:      "exchanges_pending",
	Help:      "Number of reflection-correlation slots currently open.",
})

// ─── Hops ───────────────────────────────────────────────────────────────────

// HopsTotal tracks hyperlane-to-hyperlane traversals.
var HopsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "hops_total",
	Help:      "Total wave hyperlane hops.",
})

// HopsDropped tracks waves dropped for exceeding the max hop count.
var HopsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "hops_dropped_total",
	Help:      "Total waves dropped for exceeding the maximum hop count.",
})

// ─── Search ─────────────────────────────────────────────────────────────────

// SearchLatency tracks Hyp<Search> resolution time by query kind.
var SearchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "starlane",
	Name:      "search_latency_seconds",
	Help:      "Hyp<Search> resolution duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"query_kind"})

// SearchResults tracks the number of hits a search returns, by query kind.
var SearchResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "starlane",
	Name:      "search_results",
	Help:      "Number of results returned per Hyp<Search> query.",
	Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
}, []string{"query_kind"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "starlane",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts per check.",
}, []string{"check"})

// ─── Back-pressure ──────────────────────────────────────────────────────────

// WavesShed tracks directed waves rejected by the Field-layer quota gate,
// by the handling priority that was shed.
var WavesShed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "starlane",
	Name:      "waves_shed_total",
	Help:      "Total directed waves shed by the back-pressure gate, by priority.",
}, []string{"priority"})
