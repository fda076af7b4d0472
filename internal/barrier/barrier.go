// Package barrier provides the reusable iteration barrier used by the
// parallel engine.
//
// The barrier is the single serialization point per relaxation round: no
// worker may read a neighbor partition's rows for round k+1 until every
// worker has finished writing round k. The last-arriving worker runs the
// barrier action (the buffer swap) before any waiter is released, so the
// swap is globally visible when workers proceed.
package barrier

import (
	"context"
	"errors"
	"sync"
)

// ErrBroken is returned by Await once the barrier has been broken by a
// cancelled or failed waiter. A broken barrier never recovers; all current
// and future waiters fail.
var ErrBroken = errors.New("barrier broken")

// Barrier is a reusable synchronization point for a fixed set of parties.
type Barrier struct {
	mu      sync.Mutex
	parties int
	arrived int
	release chan struct{}
	broken  bool
	action  func()
}

// New creates a barrier for the given number of parties.
//
// action, if non-nil, is executed exactly once per epoch by the last
// arriving party, before any waiter is released.
func New(parties int, action func()) *Barrier {
	return &Barrier{
		parties: parties,
		release: make(chan struct{}),
		action:  action,
	}
}

// Await blocks until all parties have arrived at the current epoch, then
// returns nil for every party.
//
// Cancellation is cooperative and observed at arrival: if ctx is done, or
// any other party's context ends while waiting, the barrier breaks and
// every waiter receives an error. The party whose context ended gets
// ctx.Err(); the rest get ErrBroken.
func (b *Barrier) Await(ctx context.Context) error {
	b.mu.Lock()
	if b.broken {
		b.mu.Unlock()

		return ErrBroken
	}
	if err := ctx.Err(); err != nil {
		b.breakLocked()
		b.mu.Unlock()

		return err
	}

	ch := b.release
	b.arrived++
	if b.arrived == b.parties {
		if b.action != nil {
			b.action()
		}
		b.arrived = 0
		b.release = make(chan struct{})
		close(ch)
		b.mu.Unlock()

		return nil
	}
	b.mu.Unlock()

	select {
	case <-ch:
		b.mu.Lock()
		broken := b.broken
		b.mu.Unlock()
		if broken {
			return ErrBroken
		}

		return nil
	case <-ctx.Done():
		b.mu.Lock()
		b.breakLocked()
		b.mu.Unlock()

		return ctx.Err()
	}
}

// Break marks the barrier broken and releases all waiters with ErrBroken.
// Used when a worker fails outside the barrier wait.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.breakLocked()
	b.mu.Unlock()
}

// breakLocked must be called with mu held.
func (b *Barrier) breakLocked() {
	if b.broken {
		return
	}
	b.broken = true
	close(b.release)
}
