package barrier

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrierLockstep(t *testing.T) {
	t.Parallel()

	const parties = 4
	const rounds = 50

	var epoch atomic.Int64
	b := New(parties, func() {
		epoch.Add(1)
	})

	var wg sync.WaitGroup
	errs := make([]error, parties)
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 1; r <= rounds; r++ {
				if err := b.Await(context.Background()); err != nil {
					errs[i] = err

					return
				}
				// The action for round r ran before anyone was released.
				if got := epoch.Load(); got < int64(r) {
					errs[i] = &lockstepError{round: r, epoch: got}

					return
				}
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "party %d", i)
	}
	require.Equal(t, int64(rounds), epoch.Load(), "action runs exactly once per epoch")
}

type lockstepError struct {
	round int
	epoch int64
}

func (e *lockstepError) Error() string {
	return "released at round before its action ran"
}

func TestBarrierNilAction(t *testing.T) {
	t.Parallel()

	b := New(1, nil)
	require.NoError(t, b.Await(context.Background()))
	require.NoError(t, b.Await(context.Background()))
}

func TestBarrierCancellation(t *testing.T) {
	t.Parallel()

	b := New(2, nil)
	ctx, cancel := context.WithCancel(context.Background())

	waiting := make(chan error, 1)
	go func() {
		waiting <- b.Await(ctx)
	}()

	// Give the waiter time to block, then cancel it.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-waiting:
		require.ErrorIs(t, err, context.Canceled, "the cancelled party gets its own ctx error")
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled waiter never released")
	}

	// The barrier is now broken for everyone else, current and future.
	require.ErrorIs(t, b.Await(context.Background()), ErrBroken)
}

func TestBarrierCancelledAtArrival(t *testing.T) {
	t.Parallel()

	b := New(2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, b.Await(ctx), context.Canceled)
	require.ErrorIs(t, b.Await(context.Background()), ErrBroken)
}

func TestBarrierBreakReleasesWaiters(t *testing.T) {
	t.Parallel()

	b := New(3, nil)

	waiting := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			waiting <- b.Await(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	b.Break()

	for i := 0; i < 2; i++ {
		select {
		case err := <-waiting:
			require.ErrorIs(t, err, ErrBroken)
		case <-time.After(5 * time.Second):
			t.Fatal("Break did not release waiters")
		}
	}

	// Break is idempotent.
	b.Break()
	require.ErrorIs(t, b.Await(context.Background()), ErrBroken)
}
