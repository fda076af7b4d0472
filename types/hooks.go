package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional and called synchronously from the engine's
// coordination path (the sequential loop, the barrier action, or the
// master's relay loop) so callbacks observe a fully settled grid epoch.
//
// Best practices for hook implementation:
//   - Complete quickly; a slow hook stalls every worker
//   - Respect context cancellation
//   - Handle errors gracefully (return error for logging)
//
// Hook errors are logged but do not abort the simulation.
type Hooks struct {
	// OnIterationComplete is called after each relaxation round with the
	// 1-based iteration number and the maximum absolute cell delta of the
	// round.
	OnIterationComplete func(ctx context.Context, iteration int, maxDelta float64) error

	// OnStateChanged is called when a distributed worker transitions state.
	OnStateChanged func(ctx context.Context, from, to WorkerState) error

	// OnError is called when a fatal error is about to be surfaced.
	OnError func(ctx context.Context, err error) error
}
