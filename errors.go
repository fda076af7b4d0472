package heatgrid

import "github.com/arloliu/heatgrid/types"

// Sentinel errors re-exported from the types subpackage so callers can use
// errors.Is against the root package. See types/errors.go for the full
// taxonomy and propagation policy.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrInvalidPartition is returned when the worker/thread count is
	// incompatible with the grid size; surfaced at setup, the simulation
	// does not start.
	ErrInvalidPartition = types.ErrInvalidPartition

	// ErrAlreadyStarted is returned when Simulate is called on an engine
	// that is already running.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrOutOfBounds is returned for invalid grid coordinate access.
	ErrOutOfBounds = types.ErrOutOfBounds

	// ErrWorkerFailure is returned when a parallel worker goroutine
	// terminates unexpectedly mid-run.
	ErrWorkerFailure = types.ErrWorkerFailure

	// ErrWorkerLost is returned when a distributed worker disconnects
	// mid-run.
	ErrWorkerLost = types.ErrWorkerLost

	// ErrStaleNeighbor indicates a boundary row with an out-of-date
	// iteration tag was observed.
	ErrStaleNeighbor = types.ErrStaleNeighbor

	// ErrConnection indicates a transport-level failure in the distributed
	// engine.
	ErrConnection = types.ErrConnection
)
