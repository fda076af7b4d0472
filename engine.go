package heatgrid

import (
	"context"
	"fmt"
	"time"
)

// Engine is the public contract shared by the sequential, parallel, and
// distributed engines.
//
// Simulate runs the given number of Jacobi relaxation rounds and returns
// the elapsed wall time. It blocks until the run completes, fails, or ctx
// is cancelled; a non-nil error means the grid holds no valid result.
// Grid returns a snapshot of the engine's field, meaningful after a
// successful Simulate.
type Engine interface {
	Simulate(ctx context.Context, iterations int) (time.Duration, error)
	Grid() *Grid
}

// checkIterations rejects iteration counts no engine can honor.
func checkIterations(iterations int) error {
	if iterations < 0 {
		return fmt.Errorf("%w: iterations (%d) must be >= 0", ErrInvalidConfig, iterations)
	}

	return nil
}

// reportHookError logs a hook failure without aborting the simulation.
func reportHookError(logger Logger, hook string, err error) {
	if err != nil {
		logger.Warn("hook returned error", "hook", hook, "error", err)
	}
}
