// Package metrics provides types.MetricsCollector implementations: a
// no-op default and a Prometheus-backed collector.
package metrics

import "github.com/arloliu/heatgrid/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordIteration discards the iteration metric.
func (n *NopMetrics) RecordIteration(_ /* duration */, _ /* maxDelta */ float64) {
	// No-op
}

// RecordSimulation discards the simulation metric.
func (n *NopMetrics) RecordSimulation(_ /* engine */ string, _ /* iterations */ int, _ /* duration */ float64) {
	// No-op
}

// RecordBoundaryExchange discards the boundary exchange metric.
func (n *NopMetrics) RecordBoundaryExchange(_ /* bytes */ int, _ /* duration */ float64) {
	// No-op
}

// RecordResultCollection discards the result collection metric.
func (n *NopMetrics) RecordResultCollection(_ /* bytes */ int, _ /* duration */ float64) {
	// No-op
}
