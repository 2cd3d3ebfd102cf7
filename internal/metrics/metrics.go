// Package metrics provides Prometheus instrumentation for registry lookups,
// unification and the unified store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the collectors of the verification pipeline.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// Registry lookup latency by source
	LookupLatency *prometheus.HistogramVec

	// Registry lookup results by source and outcome
	LookupOutcome *prometheus.CounterVec

	// Verification outcomes by status
	VerifyOutcome *prometheus.CounterVec

	// Overall verification latency
	VerifyLatency prometheus.Histogram

	// Sources integrated per unified property
	SourcesIntegrated prometheus.Histogram

	// Store operations by operation and result
	StoreOperations *prometheus.CounterVec

	// Unified record cache hits and misses
	CacheRequests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propverify_lookup_duration_seconds",
			Help:    "Duration of registry lookups by source",
			Buckets: latencyBuckets,
		}, []string{"source"}),
		LookupOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propverify_lookups_total",
			Help: "Total registry lookups by source and outcome",
		}, []string{"source", "outcome"}),
		VerifyOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propverify_verifications_total",
			Help: "Total verifications by status",
		}, []string{"status"}),
		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "propverify_verify_duration_seconds",
			Help:    "Duration of lookup, unify and upsert for one property",
			Buckets: latencyBuckets,
		}),
		SourcesIntegrated: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "propverify_sources_integrated",
			Help:    "Number of registries that held a record for a verified property",
			Buckets: []float64{0, 1, 2, 3, 4},
		}),
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propverify_store_operations_total",
			Help: "Total unified store operations by operation and result",
		}, []string{"operation", "result"}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propverify_cache_requests_total",
			Help: "Unified record cache lookups by result",
		}, []string{"result"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ObserveLookup records one registry lookup.
func (m *Metrics) ObserveLookup(source, outcome string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
		m.LookupOutcome.WithLabelValues(source, outcome).Inc()
	}
}

// ObserveVerify records a verification and its latency.
func (m *Metrics) ObserveVerify(status string, d time.Duration) {
	if m != nil {
		m.VerifyOutcome.WithLabelValues(status).Inc()
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// ObserveSourcesIntegrated records how many registries contributed to a property.
func (m *Metrics) ObserveSourcesIntegrated(n int) {
	if m != nil {
		m.SourcesIntegrated.Observe(float64(n))
	}
}

// IncrementStore records a store operation.
func (m *Metrics) IncrementStore(operation string, err error) {
	if m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.StoreOperations.WithLabelValues(operation, result).Inc()
	}
}

// IncrementCache records a cache hit or miss.
func (m *Metrics) IncrementCache(hit bool) {
	if m != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		m.CacheRequests.WithLabelValues(result).Inc()
	}
}
