package heatgrid

import (
	"github.com/arloliu/heatgrid/internal/hooks"
	"github.com/arloliu/heatgrid/internal/logging"
	"github.com/arloliu/heatgrid/internal/metrics"
)

// Option configures an engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional engine configuration.
type engineOptions struct {
	logger      Logger
	metrics     MetricsCollector
	hooks       *Hooks
	convergence float64
}

// newEngineOptions applies opts and fills safe no-op defaults so engines
// never nil-check their dependencies.
func newEngineOptions(opts []Option) *engineOptions {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	if o.hooks == nil {
		nopHooks := hooks.NewNop()
		o.hooks = &nopHooks
	}

	return o
}

// WithLogger sets a logger.
//
// Example:
//
//	logger := mySlogAdapter
//	eng, err := heatgrid.NewSequential(&cfg, heatgrid.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Example:
//
//	collector := myPrometheusCollector
//	eng, err := heatgrid.NewParallel(&cfg, 8, heatgrid.WithMetrics(collector))
func WithMetrics(collector MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = collector
	}
}

// WithHooks sets lifecycle event hooks.
//
// Example:
//
//	hooks := &heatgrid.Hooks{
//	    OnIterationComplete: func(ctx context.Context, iter int, maxDelta float64) error {
//	        return record(iter, maxDelta)
//	    },
//	}
//	eng, err := heatgrid.NewSequential(&cfg, heatgrid.WithHooks(hooks))
func WithHooks(h *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = h
	}
}

// WithConvergence enables early termination: Simulate stops once the
// maximum absolute cell change of a round drops below threshold, instead
// of always running the full iteration count.
//
// A threshold <= 0 disables the check (the default).
func WithConvergence(threshold float64) Option {
	return func(o *engineOptions) {
		o.convergence = threshold
	}
}
