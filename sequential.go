package heatgrid

import (
	"context"
	"sync/atomic"
	"time"
)

// SequentialEngine runs Jacobi relaxation on a single goroutine over the
// full grid.
//
// It is the correctness oracle: given identical inputs and iteration
// count it always produces bit-identical output, and the parallel and
// distributed engines are validated against it.
type SequentialEngine struct {
	grid    *Grid
	opts    *engineOptions
	running atomic.Bool
}

// Compile-time assertion that SequentialEngine implements Engine.
var _ Engine = (*SequentialEngine)(nil)

// NewSequential creates a sequential engine for the configured grid.
func NewSequential(cfg *Config, opts ...Option) (*SequentialEngine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	grid, err := cfg.newGrid()
	if err != nil {
		return nil, err
	}

	return &SequentialEngine{
		grid: grid,
		opts: newEngineOptions(opts),
	}, nil
}

// Simulate runs exactly iterations relaxation rounds (fewer when a
// convergence threshold is set and reached) and returns the elapsed wall
// time.
//
// Cancellation is checked between rounds; a cancelled context surfaces
// ctx.Err() and the grid holds no valid result.
func (e *SequentialEngine) Simulate(ctx context.Context, iterations int) (time.Duration, error) {
	if err := checkIterations(iterations); err != nil {
		return 0, err
	}
	if !e.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyStarted
	}
	defer e.running.Store(false)

	logger := e.opts.logger
	logger.Info("starting sequential simulation",
		"width", e.grid.Width(), "height", e.grid.Height(), "iterations", iterations)

	start := time.Now()
	executed := 0

	for k := 1; k <= iterations; k++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		iterStart := time.Now()
		maxDelta := e.grid.Sweep(1, e.grid.Height()-1)
		e.grid.Swap()
		executed = k

		e.opts.metrics.RecordIteration(time.Since(iterStart).Seconds(), maxDelta)
		if e.opts.hooks.OnIterationComplete != nil {
			reportHookError(logger, "OnIterationComplete",
				e.opts.hooks.OnIterationComplete(ctx, k, maxDelta))
		}

		if e.opts.convergence > 0 && maxDelta < e.opts.convergence {
			logger.Info("converged early", "iteration", k, "maxDelta", maxDelta)
			break
		}
	}

	elapsed := time.Since(start)
	e.opts.metrics.RecordSimulation("sequential", executed, elapsed.Seconds())
	logger.Info("sequential simulation finished", "iterations", executed, "elapsed", elapsed)

	return elapsed, nil
}

// Grid returns a snapshot of the engine's grid.
func (e *SequentialEngine) Grid() *Grid {
	return e.grid.Snapshot()
}
