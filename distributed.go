package heatgrid

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/heatgrid/internal/wire"
	"github.com/arloliu/heatgrid/partition"
	"github.com/arloliu/heatgrid/types"
)

// MasterEngine coordinates a distributed simulation session.
//
// The master never participates in relaxation arithmetic. It accepts one
// stream connection per worker, assigns partitions, relays boundary rows
// between neighbors every iteration (the exchange stays logically
// peer-to-peer: frames carry the source worker id and iteration tag), and
// assembles the final grid from the collected partition results.
//
// A worker that disconnects mid-run aborts the whole session with
// ErrWorkerLost; partial results are discarded and there is no
// checkpoint/resume. Iteration count and grid parameters are fixed at
// dispatch time and never renegotiated.
type MasterEngine struct {
	cfg        Config
	listenAddr string
	workers    int
	opts       *engineOptions

	grid     *Grid
	parts    []types.Partition
	listener net.Listener
	running  atomic.Bool
}

// Compile-time assertion that MasterEngine implements Engine.
var _ Engine = (*MasterEngine)(nil)

// NewMaster creates the master side of a distributed engine.
//
// listenAddr is the TCP address workers dial (e.g. ":8888" or
// "127.0.0.1:0"); workers is the exact number of connections the session
// requires. Returns ErrInvalidPartition when the worker count is
// incompatible with the grid size.
func NewMaster(cfg *Config, listenAddr string, workers int, opts ...Option) (*MasterEngine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	grid, err := cfg.newGrid()
	if err != nil {
		return nil, err
	}

	parts, err := partition.Assign(grid.InteriorRows(), workers)
	if err != nil {
		return nil, err
	}

	return &MasterEngine{
		cfg:        *cfg,
		listenAddr: listenAddr,
		workers:    workers,
		opts:       newEngineOptions(opts),
		grid:       grid,
		parts:      parts,
	}, nil
}

// Listen binds the master's TCP listener without accepting connections.
//
// Simulate calls Listen implicitly when needed; calling it first lets the
// caller learn the bound address (via Addr) before starting workers,
// which matters when listening on port 0.
func (m *MasterEngine) Listen(ctx context.Context) error {
	if m.listener != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", m.listenAddr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %w", ErrConnection, m.listenAddr, err)
	}
	m.listener = ln

	return nil
}

// Addr returns the listener's address, or nil before Listen.
func (m *MasterEngine) Addr() net.Addr {
	if m.listener == nil {
		return nil
	}

	return m.listener.Addr()
}

// Partitions returns the row assignment of the session.
func (m *MasterEngine) Partitions() []types.Partition {
	out := make([]types.Partition, len(m.parts))
	copy(out, m.parts)

	return out
}

// Simulate runs one full coordination session: accept handshakes,
// dispatch assignments, relay boundary rows for every iteration, collect
// and assemble results. It returns the elapsed wall time of the session.
func (m *MasterEngine) Simulate(ctx context.Context, iterations int) (time.Duration, error) {
	if err := checkIterations(iterations); err != nil {
		return 0, err
	}
	if !m.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyStarted
	}
	defer m.running.Store(false)

	logger := m.opts.logger
	start := time.Now()

	if m.listener == nil {
		if err := m.Listen(ctx); err != nil {
			return 0, err
		}
	}

	conns, err := m.awaitWorkers(ctx)
	if err != nil {
		closeAll(conns)

		return 0, err
	}
	defer closeAll(conns)

	logger.Info("master state changed", "state", types.MasterDispatching)
	if err := m.dispatch(conns, iterations); err != nil {
		return 0, err
	}

	logger.Info("master state changed", "state", types.MasterCoordinating, "iterations", iterations)
	if err := m.coordinate(ctx, conns, iterations); err != nil {
		if m.opts.hooks.OnError != nil {
			reportHookError(logger, "OnError", m.opts.hooks.OnError(ctx, err))
		}

		return 0, err
	}

	logger.Info("master state changed", "state", types.MasterDone)
	elapsed := time.Since(start)
	m.opts.metrics.RecordSimulation("distributed", iterations, elapsed.Seconds())

	return elapsed, nil
}

// awaitWorkers accepts exactly m.workers connections and validates their
// handshakes. The listener is closed once the session is full, so
// late-joining workers are refused rather than queued; the session never
// renegotiates membership.
func (m *MasterEngine) awaitWorkers(ctx context.Context) ([]net.Conn, error) {
	logger := m.opts.logger
	logger.Info("master state changed", "state", types.MasterAwaitingWorkers, "expected", m.workers)

	// Unblock Accept when the caller cancels.
	acceptDone := make(chan struct{})
	defer close(acceptDone)
	go func() {
		select {
		case <-ctx.Done():
			m.listener.Close()
		case <-acceptDone:
		}
	}()

	conns := make([]net.Conn, 0, m.workers)
	for len(conns) < m.workers {
		conn, err := m.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return conns, ctx.Err()
			}

			return conns, fmt.Errorf("%w: accept: %w", ErrConnection, err)
		}

		msg, err := wire.Read(conn)
		if err != nil {
			conn.Close()

			return conns, fmt.Errorf("%w: handshake: %w", ErrConnection, err)
		}
		hello, ok := msg.(*wire.Hello)
		if !ok || hello.Version != wire.Version {
			_ = wire.Write(conn, &wire.Abort{Reason: "unsupported handshake"})
			conn.Close()

			return conns, fmt.Errorf("%w: unexpected handshake message %v", ErrConnection, msg.Type())
		}

		logger.Debug("worker connected", "workerId", len(conns), "remote", conn.RemoteAddr())
		conns = append(conns, conn)
	}

	m.listener.Close()

	return conns, nil
}

// dispatch sends every worker its partition and the global parameters.
func (m *MasterEngine) dispatch(conns []net.Conn, iterations int) error {
	for i, conn := range conns {
		p := m.parts[i]
		assign := &wire.Assign{
			WorkerID:     uint32(p.WorkerID),
			RowStart:     uint32(p.RowStart),
			RowEnd:       uint32(p.RowEnd),
			Width:        uint32(m.cfg.Width),
			Height:       uint32(m.cfg.Height),
			Iterations:   uint32(iterations),
			BoundaryTemp: m.cfg.BoundaryTemp,
			InitialTemp:  m.cfg.InitialTemp,
			HasUpper:     i > 0,
			HasLower:     i < len(conns)-1,
		}
		if err := wire.Write(conn, assign); err != nil {
			return &types.WorkerError{
				WorkerID: i,
				Err:      fmt.Errorf("%w: dispatch: %w", types.ErrConnection, err),
			}
		}
	}

	return nil
}

// coordinate runs one handler goroutine per worker connection. Handlers
// relay boundary rows between neighbors for iterations-1 exchange rounds,
// then collect each worker's partition result into the master grid.
func (m *MasterEngine) coordinate(ctx context.Context, conns []net.Conn, iterations int) error {
	// One inbox per worker per neighbor direction. Separate channels keep
	// each producer's rows ordered by round, so a fast neighbor can never
	// slip a round-k+1 row in front of the other neighbor's round-k row.
	inboxes := make([]neighborInboxes, len(conns))
	for i := range inboxes {
		inboxes[i] = neighborInboxes{
			fromUpper: make(chan *wire.BoundaryRow, 2),
			fromLower: make(chan *wire.BoundaryRow, 2),
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Closing the connections on cancellation unblocks handler reads so a
	// single failed worker aborts the whole session promptly.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-gctx.Done():
			for _, conn := range conns {
				_ = wire.Write(conn, &wire.Abort{Reason: "session aborted"})
				conn.Close()
			}
		case <-watchDone:
		}
	}()

	// Handlers move from relaying to collecting independently; the first
	// one to finish its rounds marks the master-level transition.
	var collecting sync.Once

	for i := range conns {
		g.Go(func() error {
			return m.runHandler(gctx, conns[i], i, inboxes, iterations, &collecting)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	m.opts.logger.Info("master state changed", "state", types.MasterAssembling)

	return nil
}

// neighborInboxes holds one worker's pending halo rows, one channel per
// neighbor direction.
type neighborInboxes struct {
	fromUpper chan *wire.BoundaryRow
	fromLower chan *wire.BoundaryRow
}

// runHandler relays one worker's boundary rows and collects its result.
//
// Per exchange round the worker sends its edge rows in a fixed order
// (upper first, then lower); the handler validates the iteration tag,
// forwards each to the right neighbor inbox, then writes one halo row
// from each of its own inboxes back to the worker.
func (m *MasterEngine) runHandler(ctx context.Context, conn net.Conn, id int, inboxes []neighborInboxes, iterations int, collecting *sync.Once) error {
	p := m.parts[id]

	// Workers send their edge rows in a fixed order (upper first, then
	// lower), which makes relay routing deterministic even for a
	// single-row partition whose two edge rows share an index.
	type relay struct {
		rowIndex int
		sink     chan *wire.BoundaryRow
	}
	var seq []relay
	if id > 0 {
		// Our upper edge row is the upper neighbor's lower halo.
		seq = append(seq, relay{rowIndex: p.RowStart, sink: inboxes[id-1].fromLower})
	}
	if id < len(m.parts)-1 {
		seq = append(seq, relay{rowIndex: p.RowEnd - 1, sink: inboxes[id+1].fromUpper})
	}

	var sources []chan *wire.BoundaryRow
	if id > 0 {
		sources = append(sources, inboxes[id].fromUpper)
	}
	if id < len(m.parts)-1 {
		sources = append(sources, inboxes[id].fromLower)
	}

	lost := func(phase string, err error) error {
		if ctx.Err() != nil {
			// The session is already aborting; attribute the failure to
			// its original cause, not to our own connection teardown.
			return ctx.Err()
		}

		return &types.WorkerError{
			WorkerID: id,
			Err:      fmt.Errorf("%w: %s: %w", types.ErrWorkerLost, phase, err),
		}
	}

	for k := 1; k < iterations; k++ {
		for _, want := range seq {
			exchangeStart := time.Now()

			msg, err := wire.Read(conn)
			if err != nil {
				return lost("boundary exchange", err)
			}

			br, ok := msg.(*wire.BoundaryRow)
			if !ok {
				if abort, isAbort := msg.(*wire.Abort); isAbort {
					return lost("boundary exchange", fmt.Errorf("worker aborted: %s", abort.Reason))
				}

				return lost("boundary exchange", fmt.Errorf("%w: unexpected %v", wire.ErrUnknownMessage, msg.Type()))
			}

			// Consistency check: a row tagged behind the round being
			// exchanged means a worker lost lockstep.
			if int(br.Iteration) != k {
				return &types.WorkerError{
					WorkerID: id,
					Err: fmt.Errorf("%w: got iteration %d during exchange %d",
						types.ErrStaleNeighbor, br.Iteration, k),
				}
			}
			if int(br.RowIndex) != want.rowIndex {
				return lost("boundary exchange",
					fmt.Errorf("unexpected row %d, want %d", br.RowIndex, want.rowIndex))
			}

			select {
			case want.sink <- br:
			case <-ctx.Done():
				return ctx.Err()
			}

			m.opts.metrics.RecordBoundaryExchange(len(br.Values)*8, time.Since(exchangeStart).Seconds())
		}

		for _, source := range sources {
			select {
			case br := <-source:
				if err := wire.Write(conn, br); err != nil {
					return lost("boundary relay", err)
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	collecting.Do(func() {
		m.opts.logger.Info("master state changed", "state", types.MasterCollecting)
	})

	return m.collectResult(ctx, conn, id)
}

// collectResult receives one worker's partition values and writes them
// into the master grid. Handlers write disjoint row ranges, so no lock is
// needed.
func (m *MasterEngine) collectResult(ctx context.Context, conn net.Conn, id int) error {
	p := m.parts[id]
	collectStart := time.Now()

	lost := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return &types.WorkerError{
			WorkerID: id,
			Err:      fmt.Errorf("%w: result collection: %w", types.ErrWorkerLost, err),
		}
	}

	msg, err := wire.Read(conn)
	if err != nil {
		return lost(err)
	}
	result, ok := msg.(*wire.Result)
	if !ok {
		return lost(fmt.Errorf("%w: unexpected %v", wire.ErrUnknownMessage, msg.Type()))
	}
	if int(result.RowStart) != p.RowStart || len(result.Rows) != p.Rows() {
		return lost(fmt.Errorf("result shape mismatch: rows %d at %d, want %d at %d",
			len(result.Rows), result.RowStart, p.Rows(), p.RowStart))
	}

	bytes := 0
	for i, row := range result.Rows {
		if err := m.grid.SetRow(p.RowStart+i, row); err != nil {
			return lost(err)
		}
		bytes += len(row) * 8
	}

	m.opts.metrics.RecordResultCollection(bytes, time.Since(collectStart).Seconds())
	m.opts.logger.Debug("collected partition result", "workerId", id, "rows", len(result.Rows))

	return nil
}

// Grid returns a snapshot of the assembled grid. Meaningful only after a
// successful Simulate.
func (m *MasterEngine) Grid() *Grid {
	return m.grid.Snapshot()
}

func closeAll(conns []net.Conn) {
	for _, conn := range conns {
		if conn != nil {
			conn.Close()
		}
	}
}
