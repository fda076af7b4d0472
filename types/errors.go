package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the heatgrid library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).

// Setup errors - surfaced before a simulation starts.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPartition is returned when the worker count is incompatible
	// with the grid size (a partition would be empty, or the count is < 1).
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrAlreadyStarted is returned when Simulate is called on an engine
	// that is already running.
	ErrAlreadyStarted = errors.New("simulation already running")
)

// Grid errors.
var (
	// ErrOutOfBounds is returned when a grid coordinate exceeds the
	// declared dimensions. Always a programming error; never retried.
	ErrOutOfBounds = errors.New("grid coordinate out of bounds")
)

// Runtime errors - surfaced by Simulate. The simulation aborts and no
// partial grid is returned as valid.
var (
	// ErrWorkerFailure is returned when a parallel worker goroutine
	// terminates unexpectedly mid-run.
	ErrWorkerFailure = errors.New("worker failure")

	// ErrWorkerLost is returned when a distributed worker disconnects
	// mid-run. There is no checkpoint or resume.
	ErrWorkerLost = errors.New("worker lost")

	// ErrStaleNeighbor indicates a worker was observed using a boundary row
	// whose iteration tag is behind the current iteration. This is a
	// synchronization bug: fatal, not recoverable.
	ErrStaleNeighbor = errors.New("stale neighbor boundary row")

	// ErrConnection indicates a transport-level failure during handshake or
	// boundary exchange. Only the distributed engine can produce it.
	ErrConnection = errors.New("connection error")
)

// WorkerError attributes a runtime failure to the partition that caused it.
//
// It wraps one of the runtime sentinels above so callers can use both
// errors.Is (for the kind) and errors.As (for the worker id):
//
//	var werr *types.WorkerError
//	if errors.As(err, &werr) {
//	    log.Error("partition failed", "worker", werr.WorkerID)
//	}
type WorkerError struct {
	// WorkerID is the id of the failed worker/partition.
	WorkerID int

	// Err is the underlying cause, wrapping a runtime sentinel.
	Err error
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.WorkerID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WorkerError) Unwrap() error {
	return e.Err
}
