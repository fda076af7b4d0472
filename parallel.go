package heatgrid

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/heatgrid/internal/barrier"
	"github.com/arloliu/heatgrid/partition"
	"github.com/arloliu/heatgrid/types"
)

// ParallelEngine runs Jacobi relaxation with one goroutine per partition
// sharing a single grid.
//
// Each worker owns exclusive write access to its row band of the next
// buffer and reads its neighbors' halo rows from the current buffer, so
// no per-cell locking is needed. The per-iteration barrier is the single
// serialization point: the last-arriving worker swaps the buffers, and no
// worker starts round k+1 until the swap of round k is globally visible.
type ParallelEngine struct {
	grid    *Grid
	parts   []types.Partition
	opts    *engineOptions
	running atomic.Bool
}

// Compile-time assertion that ParallelEngine implements Engine.
var _ Engine = (*ParallelEngine)(nil)

// NewParallel creates a parallel engine with the given number of worker
// goroutines.
//
// The thread count is fixed for the run; there is no dynamic
// repartitioning. Returns ErrInvalidPartition when threads < 1 or exceeds
// the grid's interior rows.
func NewParallel(cfg *Config, threads int, opts ...Option) (*ParallelEngine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	grid, err := cfg.newGrid()
	if err != nil {
		return nil, err
	}

	parts, err := partition.Assign(grid.InteriorRows(), threads)
	if err != nil {
		return nil, err
	}

	return &ParallelEngine{
		grid:  grid,
		parts: parts,
		opts:  newEngineOptions(opts),
	}, nil
}

// Partitions returns the row assignment of the run.
func (e *ParallelEngine) Partitions() []types.Partition {
	out := make([]types.Partition, len(e.parts))
	copy(out, e.parts)

	return out
}

// Simulate runs the relaxation rounds across all workers and returns the
// elapsed wall time.
//
// If any worker terminates unexpectedly, the whole simulation aborts and
// reports ErrWorkerFailure (wrapped in a WorkerError carrying the
// offending partition id); partial results are discarded, not silently
// returned. Cancellation is cooperative and observed at each barrier
// arrival.
func (e *ParallelEngine) Simulate(ctx context.Context, iterations int) (time.Duration, error) {
	if err := checkIterations(iterations); err != nil {
		return 0, err
	}
	if !e.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyStarted
	}
	defer e.running.Store(false)

	logger := e.opts.logger
	logger.Info("starting parallel simulation",
		"width", e.grid.Width(), "height", e.grid.Height(),
		"workers", len(e.parts), "iterations", iterations)

	start := time.Now()

	if iterations == 0 {
		e.opts.metrics.RecordSimulation("parallel", 0, time.Since(start).Seconds())

		return time.Since(start), nil
	}

	// Per-worker max deltas, aggregated by the barrier action. Workers
	// write disjoint slots, and the barrier's release edge orders those
	// writes before the aggregation read.
	deltas := make([]float64, len(e.parts))

	var stop atomic.Bool
	completed := 0
	iterStart := start

	// The barrier action runs on the last-arriving worker once per epoch,
	// after all sweeps of the round and before any worker proceeds.
	bar := barrier.New(len(e.parts), func() {
		maxDelta := 0.0
		for _, d := range deltas {
			if d > maxDelta {
				maxDelta = d
			}
		}

		e.grid.Swap()
		completed++

		e.opts.metrics.RecordIteration(time.Since(iterStart).Seconds(), maxDelta)
		iterStart = time.Now()

		if e.opts.hooks.OnIterationComplete != nil {
			reportHookError(logger, "OnIterationComplete",
				e.opts.hooks.OnIterationComplete(ctx, completed, maxDelta))
		}

		if completed >= iterations {
			stop.Store(true)
		} else if e.opts.convergence > 0 && maxDelta < e.opts.convergence {
			logger.Info("converged early", "iteration", completed, "maxDelta", maxDelta)
			stop.Store(true)
		}
	})

	// The first failing worker records itself here; innocent workers woken
	// by the broken barrier return unattributed errors, so the offender's
	// WorkerError wins regardless of which goroutine errgroup reports.
	var failure atomic.Pointer[types.WorkerError]

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range e.parts {
		g.Go(func() error {
			return e.runWorker(gctx, bar, p, deltas, &stop, &failure)
		})
	}

	if err := g.Wait(); err != nil {
		if werr := failure.Load(); werr != nil {
			err = werr
		}
		if e.opts.hooks.OnError != nil {
			reportHookError(logger, "OnError", e.opts.hooks.OnError(ctx, err))
		}

		return 0, err
	}

	elapsed := time.Since(start)
	e.opts.metrics.RecordSimulation("parallel", completed, elapsed.Seconds())
	logger.Info("parallel simulation finished", "iterations", completed, "elapsed", elapsed)

	return elapsed, nil
}

// runWorker executes the per-iteration loop for one partition: sweep own
// rows, arrive at the barrier, proceed after the swap is visible.
func (e *ParallelEngine) runWorker(ctx context.Context, bar *barrier.Barrier, p types.Partition, deltas []float64, stop *atomic.Bool, failure *atomic.Pointer[types.WorkerError]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			bar.Break()
			werr := &types.WorkerError{
				WorkerID: p.WorkerID,
				Err:      fmt.Errorf("%w: panic: %v", types.ErrWorkerFailure, r),
			}
			failure.CompareAndSwap(nil, werr)
			err = werr
		}
	}()

	for {
		deltas[p.WorkerID] = e.grid.Sweep(p.RowStart, p.RowEnd)

		if err := bar.Await(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			// Broken by another worker's failure: that worker records the
			// attributed error, so return the barrier error unwrapped.
			return err
		}

		if stop.Load() {
			return nil
		}
	}
}

// Grid returns a snapshot of the shared grid.
func (e *ParallelEngine) Grid() *Grid {
	return e.grid.Snapshot()
}
