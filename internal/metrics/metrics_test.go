package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/internal/metrics"
)

func TestObserve(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveLookup("doris", metrics.OutcomeFound, 20*time.Millisecond)
	m.ObserveLookup("doris", metrics.OutcomeNotFound, time.Millisecond)
	m.ObserveVerify("ok", time.Second)
	m.ObserveSourcesIntegrated(3)
	m.IncrementStore("upsert", nil)
	m.IncrementStore("upsert", errors.New("boom"))
	m.IncrementCache(true)

	assert.InDelta(t, 1, testutil.ToFloat64(m.LookupOutcome.WithLabelValues("doris", metrics.OutcomeFound)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.VerifyOutcome.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreOperations.WithLabelValues("upsert", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveLookup("dlr", metrics.OutcomeError, time.Millisecond)
		m.ObserveVerify("error", time.Millisecond)
		m.ObserveSourcesIntegrated(0)
		m.IncrementStore("get", nil)
		m.IncrementCache(false)
	})
}

func TestNewRegistry(t *testing.T) {
	reg := metrics.NewRegistry()
	metrics.New(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
