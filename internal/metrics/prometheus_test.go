package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollectorRecords(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewPrometheus(reg, "test")

	c.RecordIteration(0.001, 42.5)
	c.RecordSimulation("sequential", 100, 0.5)
	c.RecordSimulation("sequential", 100, 0.25)
	c.RecordBoundaryExchange(800, 0.0001)
	c.RecordResultCollection(8000, 0.002)

	require.Equal(t, 42.5, testutil.ToFloat64(c.iterationMaxDelta))
	require.Equal(t, 2.0, testutil.ToFloat64(c.simulationTotal.WithLabelValues("sequential")))
	require.Equal(t, 800.0, testutil.ToFloat64(c.exchangeBytes))
	require.Equal(t, 8000.0, testutil.ToFloat64(c.resultBytes))
}

func TestPrometheusCollectorSharedRegisterer(t *testing.T) {
	t.Parallel()

	// Two collectors on one registerer must not panic on duplicate
	// registration.
	reg := prometheus.NewRegistry()
	a := NewPrometheus(reg, "shared")
	b := NewPrometheus(reg, "shared")

	require.NotPanics(t, func() {
		a.RecordIteration(0.001, 1)
		b.RecordIteration(0.001, 2)
	})
}

func TestNopMetrics(t *testing.T) {
	t.Parallel()

	var m NopMetrics
	m.RecordIteration(1, 1)
	m.RecordSimulation("parallel", 10, 1)
	m.RecordBoundaryExchange(1, 1)
	m.RecordResultCollection(1, 1)
}
