// Package worker implements the compute side of the distributed engine.
//
// A worker dials the master, receives its partition assignment and global
// parameters, then runs lockstep Jacobi rounds over its row band. After
// every round except the last it sends its edge rows and blocks until it
// holds both expected neighbor halo rows for the same round, which is
// what enforces the ordering guarantee: iteration k's exchange completes
// before any iteration k+1 boundary-adjacent computation. After the final
// round it reports its partition values and the session ends.
package worker

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/arloliu/heatgrid"
	"github.com/arloliu/heatgrid/internal/hooks"
	"github.com/arloliu/heatgrid/internal/logging"
	"github.com/arloliu/heatgrid/internal/wire"
	"github.com/arloliu/heatgrid/types"
)

// Option configures a worker with optional dependencies.
type Option func(*options)

type options struct {
	logger      types.Logger
	hooks       *types.Hooks
	dialTimeout time.Duration
	dialRetries int
}

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks sets lifecycle event hooks. OnStateChanged fires on every
// worker state transition.
func WithHooks(h *types.Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithDialTimeout sets the per-attempt dial timeout (default 5s).
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithDialRetries sets how many times the dial is retried before giving
// up (default 20, 250ms apart), so workers can start slightly before the
// master is listening.
func WithDialRetries(n int) Option {
	return func(o *options) {
		o.dialRetries = n
	}
}

// session holds the state of one coordination session.
type session struct {
	opts  *options
	conn  net.Conn
	state types.WorkerState

	id       int
	rowStart int
	rowEnd   int
	hasUpper bool
	hasLower bool

	// slab is the worker's local grid: its interior rows plus one halo
	// row above and below. Local row r maps to global row rowStart-1+r.
	slab *heatgrid.Grid
}

// Run executes one full worker session against the master at masterAddr.
//
// It blocks until the session completes, fails, or ctx is cancelled.
// Transport failures surface as ErrConnection; an out-of-round halo row
// surfaces as ErrStaleNeighbor.
func Run(ctx context.Context, masterAddr string, opts ...Option) error {
	o := &options{
		dialTimeout: 5 * time.Second,
		dialRetries: 20,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.hooks == nil {
		nopHooks := hooks.NewNop()
		o.hooks = &nopHooks
	}

	s := &session{opts: o, state: types.WorkerConnecting}

	conn, err := s.dial(ctx, masterAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	if err := s.run(ctx); err != nil {
		if o.hooks.OnError != nil {
			if hookErr := o.hooks.OnError(ctx, err); hookErr != nil {
				o.logger.Warn("hook returned error", "hook", "OnError", "error", hookErr)
			}
		}
		// Best effort; the master aborts the session on disconnect anyway.
		_ = wire.Write(conn, &wire.Abort{Reason: err.Error()})

		return err
	}

	return nil
}

// dial connects to the master with retries, so start order between master
// and workers does not matter within the retry window.
func (s *session) dial(ctx context.Context, masterAddr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.opts.dialTimeout}

	var lastErr error
	for attempt := 0; attempt <= s.opts.dialRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := dialer.DialContext(ctx, "tcp", masterAddr)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("%w: dial %s: %w", types.ErrConnection, masterAddr, lastErr)
}

func (s *session) setState(ctx context.Context, to types.WorkerState) {
	from := s.state
	s.state = to
	s.opts.logger.Debug("worker state changed", "from", from, "to", to)
	if s.opts.hooks.OnStateChanged != nil {
		if err := s.opts.hooks.OnStateChanged(ctx, from, to); err != nil {
			s.opts.logger.Warn("hook returned error", "hook", "OnStateChanged", "error", err)
		}
	}
}

func (s *session) run(ctx context.Context) error {
	s.setState(ctx, types.WorkerAwaitingAssignment)
	if err := wire.Write(s.conn, &wire.Hello{Version: wire.Version}); err != nil {
		return fmt.Errorf("%w: handshake: %w", types.ErrConnection, err)
	}

	assign, err := s.awaitAssignment()
	if err != nil {
		return err
	}
	if err := s.prepare(assign); err != nil {
		return err
	}
	s.setState(ctx, types.WorkerReady)

	iterations := int(assign.Iterations)
	for k := 1; k <= iterations; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.setState(ctx, types.WorkerIterating)
		s.slab.Sweep(1, s.slab.Height()-1)
		s.slab.Swap()

		if k == iterations {
			break
		}

		s.setState(ctx, types.WorkerExchanging)
		if err := s.exchange(k); err != nil {
			return err
		}
	}

	s.setState(ctx, types.WorkerReporting)
	if err := s.report(); err != nil {
		return err
	}
	s.setState(ctx, types.WorkerDone)
	s.opts.logger.Info("worker session finished", "workerId", s.id, "iterations", iterations)

	return nil
}

func (s *session) awaitAssignment() (*wire.Assign, error) {
	msg, err := wire.Read(s.conn)
	if err != nil {
		return nil, fmt.Errorf("%w: awaiting assignment: %w", types.ErrConnection, err)
	}

	switch m := msg.(type) {
	case *wire.Assign:
		return m, nil
	case *wire.Abort:
		return nil, fmt.Errorf("%w: master aborted: %s", types.ErrConnection, m.Reason)
	default:
		return nil, fmt.Errorf("%w: unexpected %v while awaiting assignment", types.ErrConnection, msg.Type())
	}
}

// prepare builds the local slab from the assignment: the worker's rows
// plus one halo row on each side. Halo rows on the grid's edge are fixed
// borders; neighbor-side halos start at the neighbor's initial interior
// values and are refreshed by every exchange.
func (s *session) prepare(assign *wire.Assign) error {
	s.id = int(assign.WorkerID)
	s.rowStart = int(assign.RowStart)
	s.rowEnd = int(assign.RowEnd)
	s.hasUpper = assign.HasUpper
	s.hasLower = assign.HasLower

	rows := s.rowEnd - s.rowStart
	if rows < 1 || assign.Width < 3 {
		return fmt.Errorf("%w: bad assignment %d:[%d,%d) width %d",
			types.ErrConnection, s.id, s.rowStart, s.rowEnd, assign.Width)
	}

	slab, err := heatgrid.NewGrid(int(assign.Width), rows+2, assign.BoundaryTemp, assign.InitialTemp)
	if err != nil {
		return fmt.Errorf("%w: building slab: %w", types.ErrConnection, err)
	}

	// NewGrid fixes the slab's top and bottom rows at boundaryTemp. When a
	// neighbor exists there, the halo is interior grid and starts at
	// initialTemp instead.
	width := int(assign.Width)
	if s.hasUpper {
		for c := 1; c < width-1; c++ {
			_ = slab.Set(0, c, assign.InitialTemp)
		}
	}
	if s.hasLower {
		for c := 1; c < width-1; c++ {
			_ = slab.Set(rows+1, c, assign.InitialTemp)
		}
	}

	s.slab = slab
	s.opts.logger.Info("assignment received",
		"workerId", s.id, "rowStart", s.rowStart, "rowEnd", s.rowEnd,
		"width", assign.Width, "iterations", assign.Iterations)

	return nil
}

// exchange sends this worker's edge rows for round k (upper first, then
// lower — the master relies on this order) and blocks until both expected
// neighbor halo rows for round k have been received and installed.
func (s *session) exchange(k int) error {
	if s.hasUpper {
		if err := s.sendRow(k, s.rowStart, 1); err != nil {
			return err
		}
	}
	if s.hasLower {
		if err := s.sendRow(k, s.rowEnd-1, s.slab.Height()-2); err != nil {
			return err
		}
	}

	expect := 0
	if s.hasUpper {
		expect++
	}
	if s.hasLower {
		expect++
	}

	for i := 0; i < expect; i++ {
		msg, err := wire.Read(s.conn)
		if err != nil {
			return fmt.Errorf("%w: receiving halo row: %w", types.ErrConnection, err)
		}

		br, ok := msg.(*wire.BoundaryRow)
		if !ok {
			if abort, isAbort := msg.(*wire.Abort); isAbort {
				return fmt.Errorf("%w: master aborted: %s", types.ErrConnection, abort.Reason)
			}

			return fmt.Errorf("%w: unexpected %v during exchange", types.ErrConnection, msg.Type())
		}

		if int(br.Iteration) != k {
			return fmt.Errorf("%w: halo row for iteration %d during exchange %d",
				types.ErrStaleNeighbor, br.Iteration, k)
		}

		// Halo rows are matched by global index: the row above our band
		// installs at local 0, the row below at the bottom halo slot.
		switch int(br.RowIndex) {
		case s.rowStart - 1:
			if err := s.slab.SetRow(0, br.Values); err != nil {
				return fmt.Errorf("%w: installing upper halo: %w", types.ErrConnection, err)
			}
		case s.rowEnd:
			if err := s.slab.SetRow(s.slab.Height()-1, br.Values); err != nil {
				return fmt.Errorf("%w: installing lower halo: %w", types.ErrConnection, err)
			}
		default:
			return fmt.Errorf("%w: halo row %d outside band [%d,%d)",
				types.ErrConnection, br.RowIndex, s.rowStart, s.rowEnd)
		}
	}

	return nil
}

func (s *session) sendRow(iteration, globalRow, localRow int) error {
	values, err := s.slab.Row(localRow)
	if err != nil {
		return fmt.Errorf("%w: reading edge row: %w", types.ErrConnection, err)
	}

	msg := &wire.BoundaryRow{
		WorkerID:  uint32(s.id),
		Iteration: uint32(iteration),
		RowIndex:  uint32(globalRow),
		Values:    values,
	}
	if err := wire.Write(s.conn, msg); err != nil {
		return fmt.Errorf("%w: sending edge row: %w", types.ErrConnection, err)
	}

	return nil
}

// report sends the worker's full partition values to the master.
func (s *session) report() error {
	rows := make([][]float64, s.rowEnd-s.rowStart)
	for i := range rows {
		row, err := s.slab.Row(i + 1)
		if err != nil {
			return fmt.Errorf("%w: reading result row: %w", types.ErrConnection, err)
		}
		rows[i] = row
	}

	msg := &wire.Result{
		WorkerID: uint32(s.id),
		RowStart: uint32(s.rowStart),
		Rows:     rows,
	}
	if err := wire.Write(s.conn, msg); err != nil {
		return fmt.Errorf("%w: sending result: %w", types.ErrConnection, err)
	}

	return nil
}
