package heatgrid

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/heatgrid/internal/barrier"
)

func TestParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width      int
		height     int
		threads    int
		iterations int
	}{
		{8, 8, 1, 5},
		{10, 10, 2, 50},
		{33, 17, 3, 25},
		{9, 9, 7, 30},
		{100, 100, 4, 100},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%dx%d/t%d/i%d", tt.width, tt.height, tt.threads, tt.iterations)
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Width: tt.width, Height: tt.height, BoundaryTemp: 100, InitialTemp: 0}

			seq, err := NewSequential(&cfg)
			require.NoError(t, err)
			_, err = seq.Simulate(context.Background(), tt.iterations)
			require.NoError(t, err)

			par, err := NewParallel(&cfg, tt.threads)
			require.NoError(t, err)
			_, err = par.Simulate(context.Background(), tt.iterations)
			require.NoError(t, err)

			diff, err := par.Grid().MaxDiff(seq.Grid())
			require.NoError(t, err)
			require.Less(t, diff, 1e-9, "parallel result diverged from the sequential oracle")
		})
	}
}

func TestParallelInvalidPartition(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 10, Height: 10, BoundaryTemp: 100, InitialTemp: 0}

	_, err := NewParallel(&cfg, 0)
	require.ErrorIs(t, err, ErrInvalidPartition)

	// 8 interior rows cannot feed 9 workers.
	_, err = NewParallel(&cfg, 9)
	require.ErrorIs(t, err, ErrInvalidPartition)

	_, err = NewParallel(&cfg, 8)
	require.NoError(t, err)
}

func TestParallelPartitionsCoverInterior(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 10, Height: 15, BoundaryTemp: 100, InitialTemp: 0}
	eng, err := NewParallel(&cfg, 4)
	require.NoError(t, err)

	parts := eng.Partitions()
	require.Len(t, parts, 4)
	require.Equal(t, 1, parts[0].RowStart)
	for i := 1; i < len(parts); i++ {
		require.Equal(t, parts[i-1].RowEnd, parts[i].RowStart, "partitions must be contiguous")
	}
	require.Equal(t, 14, parts[len(parts)-1].RowEnd, "partitions must cover all interior rows")
}

func TestParallelBoundaryInvariance(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 11, Height: 13, BoundaryTemp: -5, InitialTemp: 60}
	eng, err := NewParallel(&cfg, 3)
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), 40)
	require.NoError(t, err)

	grid := eng.Grid()
	for c := 0; c < grid.Width(); c++ {
		top, err := grid.Get(0, c)
		require.NoError(t, err)
		bottom, err := grid.Get(grid.Height()-1, c)
		require.NoError(t, err)
		require.Equal(t, -5.0, top)
		require.Equal(t, -5.0, bottom)
	}
	for r := 0; r < grid.Height(); r++ {
		left, err := grid.Get(r, 0)
		require.NoError(t, err)
		right, err := grid.Get(r, grid.Width()-1)
		require.NoError(t, err)
		require.Equal(t, -5.0, left)
		require.Equal(t, -5.0, right)
	}
}

func TestParallelConvergenceStopsEarly(t *testing.T) {
	t.Parallel()

	iterations := 0
	hooks := &Hooks{
		OnIterationComplete: func(_ context.Context, iter int, _ float64) error {
			iterations = iter

			return nil
		},
	}

	cfg := Config{Width: 8, Height: 8, BoundaryTemp: 100, InitialTemp: 0}
	eng, err := NewParallel(&cfg, 2, WithConvergence(1e-3), WithHooks(hooks))
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), 100000)
	require.NoError(t, err)
	require.Greater(t, iterations, 0)
	require.Less(t, iterations, 100000)
}

func TestParallelCancellation(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 200, Height: 200, BoundaryTemp: 100, InitialTemp: 0}
	eng, err := NewParallel(&cfg, 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := eng.Simulate(ctx, 10_000_000)
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("cancellation did not stop the simulation")
	}
}

func TestParallelWorkerPanicAborts(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 10, Height: 10, BoundaryTemp: 100, InitialTemp: 0}
	eng, err := NewParallel(&cfg, 2)
	require.NoError(t, err)

	bar := barrier.New(1, nil)
	var stop atomic.Bool
	var failure atomic.Pointer[WorkerError]

	// A deltas slice with no slot for the partition faults the worker
	// mid-round. The recovery path must attribute the failure to the
	// offending partition and break the barrier for everyone else.
	p := Partition{WorkerID: 3, RowStart: 1, RowEnd: 2}
	err = eng.runWorker(context.Background(), bar, p, nil, &stop, &failure)

	require.ErrorIs(t, err, ErrWorkerFailure)

	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 3, werr.WorkerID, "the failure must name the offending partition")
	require.Equal(t, werr, failure.Load(), "the offender must record itself for attribution")

	require.ErrorIs(t, bar.Await(context.Background()), barrier.ErrBroken)
}

func TestParallelZeroIterations(t *testing.T) {
	t.Parallel()

	cfg := Config{Width: 6, Height: 6, BoundaryTemp: 100, InitialTemp: 3}
	eng, err := NewParallel(&cfg, 2)
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 3.0, eng.Grid().AverageInterior())
}

func BenchmarkParallelSimulate(b *testing.B) {
	for _, threads := range []int{1, 2, 4} {
		b.Run(fmt.Sprintf("threads-%d", threads), func(b *testing.B) {
			cfg := Config{Width: 128, Height: 128, BoundaryTemp: 100, InitialTemp: 0}
			eng, err := NewParallel(&cfg, threads)
			if err != nil {
				b.Fatal(err)
			}

			ctx := context.Background()
			b.ResetTimer()
			for b.Loop() {
				if _, err := eng.Simulate(ctx, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
