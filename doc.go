// Package heatgrid simulates 2D heat diffusion via iterative Jacobi
// relaxation and provides three interchangeable execution engines:
// sequential, shared-memory parallel, and distributed master/worker.
//
// # Quick Start
//
// Basic usage with the sequential engine:
//
//	import "github.com/arloliu/heatgrid"
//
//	cfg := heatgrid.Config{
//	    Width:        100,
//	    Height:       100,
//	    BoundaryTemp: 100,
//	    InitialTemp:  0,
//	}
//
//	eng, err := heatgrid.NewSequential(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	elapsed, err := eng.Simulate(ctx, 1000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	grid := eng.Grid()
//
// # Engines
//
//   - SequentialEngine: full-grid relaxation on one goroutine; the
//     correctness oracle the concurrent engines are validated against.
//   - ParallelEngine: one goroutine per row partition sharing one grid,
//     synchronized by a per-iteration barrier. The last-arriving worker
//     swaps the buffer pair, so every round reads a fully settled grid.
//   - MasterEngine + worker.Run: master/worker coordination over framed
//     TCP. The master partitions rows, relays halo rows between neighbors
//     every iteration, and assembles the final grid; workers do all the
//     arithmetic.
//
// All engines produce cell-wise identical results for the same input and
// iteration count, because every cell is computed with the same
// neighborhood values in the same expression order.
//
// # Architecture
//
// Distributed workers progress through a state machine:
//
//	Connecting → AwaitingAssignment → Ready → Iterating(k) →
//	Exchanging(k) → Iterating(k+1) → … → Reporting → Done
//
// A worker never starts a round's boundary-adjacent cells before holding
// both neighbor halo rows tagged with the previous round. Any worker
// failure aborts the whole session; partial results are discarded, never
// returned as valid.
//
// # Advanced Usage
//
// Engines accept functional options for logging, metrics, hooks, and
// early convergence:
//
//	hooks := &heatgrid.Hooks{
//	    OnIterationComplete: func(ctx context.Context, iter int, maxDelta float64) error {
//	        fmt.Printf("iteration %d: max delta %.6f\n", iter, maxDelta)
//	        return nil
//	    },
//	}
//
//	eng, err := heatgrid.NewParallel(&cfg, 8,
//	    heatgrid.WithLogger(myLogger),      // any heatgrid.Logger
//	    heatgrid.WithHooks(hooks),
//	    heatgrid.WithConvergence(1e-6),
//	)
package heatgrid
