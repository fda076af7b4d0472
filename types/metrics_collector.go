package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from internal goroutines and must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces so consumers
// can instrument only the engines they use.
type MetricsCollector interface {
	EngineMetrics
	ExchangeMetrics
}

// EngineMetrics defines metrics common to all engines.
type EngineMetrics interface {
	// RecordIteration records one completed relaxation round.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - maxDelta: Maximum absolute cell change of the round
	RecordIteration(duration float64, maxDelta float64)

	// RecordSimulation records a completed simulation run.
	//
	// Parameters:
	//   - engine: Engine name ("sequential", "parallel", "distributed")
	//   - iterations: Number of rounds executed
	//   - duration: Total wall time in seconds
	RecordSimulation(engine string, iterations int, duration float64)
}

// ExchangeMetrics defines metrics for distributed boundary exchange and
// result collection.
type ExchangeMetrics interface {
	// RecordBoundaryExchange records one relayed boundary row.
	//
	// Parameters:
	//   - bytes: Payload size on the wire
	//   - duration: Relay latency in seconds
	RecordBoundaryExchange(bytes int, duration float64)

	// RecordResultCollection records one collected partition result.
	//
	// Parameters:
	//   - bytes: Payload size on the wire
	//   - duration: Time to receive in seconds
	RecordResultCollection(bytes int, duration float64)
}
