package metrics

import (
	"sync"

	"github.com/arloliu/heatgrid/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by
// Prometheus.
//
// It registers its collectors lazily on first use so constructing one is
// cheap and never panics on duplicate registration at build time. The
// collector only records; exposing the registry (if desired) is the
// caller's concern.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	iterationDuration prometheus.Histogram
	iterationMaxDelta prometheus.Gauge
	simulationTotal   *prometheus.CounterVec
	simulationSeconds *prometheus.HistogramVec
	exchangeBytes     prometheus.Counter
	exchangeLatency   prometheus.Histogram
	resultBytes       prometheus.Counter
	resultLatency     prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace (defaults to "heatgrid" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "heatgrid"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) init() {
	p.once.Do(func() {
		p.iterationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "iteration_duration_seconds",
			Help:      "Duration of one relaxation round.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		})
		p.iterationMaxDelta = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "iteration_max_delta",
			Help:      "Maximum absolute cell change of the last round.",
		})
		p.simulationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "simulations_total",
			Help:      "Completed simulation runs by engine.",
		}, []string{"engine"})
		p.simulationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Total wall time of simulation runs by engine.",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 12),
		}, []string{"engine"})
		p.exchangeBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "boundary_exchange_bytes_total",
			Help:      "Bytes of boundary rows relayed between workers.",
		})
		p.exchangeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "boundary_exchange_duration_seconds",
			Help:      "Latency of relaying one boundary row.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		})
		p.resultBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "result_collection_bytes_total",
			Help:      "Bytes of partition results collected by the master.",
		})
		p.resultLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "result_collection_duration_seconds",
			Help:      "Time to receive one partition result.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		})

		collectors := []prometheus.Collector{
			p.iterationDuration, p.iterationMaxDelta,
			p.simulationTotal, p.simulationSeconds,
			p.exchangeBytes, p.exchangeLatency,
			p.resultBytes, p.resultLatency,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so two engines can share
			// one registerer.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordIteration records one completed relaxation round.
func (p *PrometheusCollector) RecordIteration(duration, maxDelta float64) {
	p.init()
	p.iterationDuration.Observe(duration)
	p.iterationMaxDelta.Set(maxDelta)
}

// RecordSimulation records a completed simulation run.
func (p *PrometheusCollector) RecordSimulation(engine string, _ int, duration float64) {
	p.init()
	p.simulationTotal.WithLabelValues(engine).Inc()
	p.simulationSeconds.WithLabelValues(engine).Observe(duration)
}

// RecordBoundaryExchange records one relayed boundary row.
func (p *PrometheusCollector) RecordBoundaryExchange(bytes int, duration float64) {
	p.init()
	p.exchangeBytes.Add(float64(bytes))
	p.exchangeLatency.Observe(duration)
}

// RecordResultCollection records one collected partition result.
func (p *PrometheusCollector) RecordResultCollection(bytes int, duration float64) {
	p.init()
	p.resultBytes.Add(float64(bytes))
	p.resultLatency.Observe(duration)
}
