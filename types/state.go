package types

// WorkerState represents the lifecycle state of a distributed worker.
//
// States follow a defined progression during normal operation:
//
//	WorkerConnecting → WorkerAwaitingAssignment → WorkerReady →
//	WorkerIterating → WorkerExchanging → WorkerIterating → … →
//	WorkerReporting → WorkerDone
//
// Iterating and Exchanging alternate once per relaxation round. Any
// transport or consistency failure is terminal: the session aborts and the
// worker does not attempt to rejoin.
type WorkerState int

const (
	// WorkerConnecting indicates the worker is dialing the master.
	WorkerConnecting WorkerState = iota

	// WorkerAwaitingAssignment indicates the handshake was sent and the
	// worker is waiting for its partition assignment.
	WorkerAwaitingAssignment

	// WorkerReady indicates the assignment was received and local buffers
	// are initialized.
	WorkerReady

	// WorkerIterating indicates the worker is computing a relaxation round
	// over its row band.
	WorkerIterating

	// WorkerExchanging indicates the worker is exchanging boundary rows
	// with its neighbors.
	WorkerExchanging

	// WorkerReporting indicates the final iteration completed and the
	// worker is sending its partition values to the master.
	WorkerReporting

	// WorkerDone indicates the session finished.
	WorkerDone
)

// String returns the string representation of the worker state.
func (s WorkerState) String() string {
	switch s {
	case WorkerConnecting:
		return "Connecting"
	case WorkerAwaitingAssignment:
		return "AwaitingAssignment"
	case WorkerReady:
		return "Ready"
	case WorkerIterating:
		return "Iterating"
	case WorkerExchanging:
		return "Exchanging"
	case WorkerReporting:
		return "Reporting"
	case WorkerDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// MasterState represents the lifecycle state of the distributed master.
//
// The master never participates in relaxation arithmetic; it partitions,
// dispatches, relays boundary rows, and assembles the final grid:
//
//	MasterAwaitingWorkers → MasterDispatching → MasterCoordinating →
//	MasterCollecting → MasterAssembling → MasterDone
type MasterState int

const (
	// MasterAwaitingWorkers indicates the master is accepting handshakes.
	MasterAwaitingWorkers MasterState = iota

	// MasterDispatching indicates partition assignments are being sent.
	MasterDispatching

	// MasterCoordinating indicates boundary rows are being relayed between
	// neighboring workers each iteration.
	MasterCoordinating

	// MasterCollecting indicates final partition values are being received.
	MasterCollecting

	// MasterAssembling indicates the complete grid is being assembled in
	// partition order.
	MasterAssembling

	// MasterDone indicates the session finished.
	MasterDone
)

// String returns the string representation of the master state.
func (s MasterState) String() string {
	switch s {
	case MasterAwaitingWorkers:
		return "AwaitingWorkers"
	case MasterDispatching:
		return "Dispatching"
	case MasterCoordinating:
		return "Coordinating"
	case MasterCollecting:
		return "Collecting"
	case MasterAssembling:
		return "Assembling"
	case MasterDone:
		return "Done"
	default:
		return "Unknown"
	}
}
