package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state WorkerState
		want  string
	}{
		{WorkerConnecting, "Connecting"},
		{WorkerAwaitingAssignment, "AwaitingAssignment"},
		{WorkerReady, "Ready"},
		{WorkerIterating, "Iterating"},
		{WorkerExchanging, "Exchanging"},
		{WorkerReporting, "Reporting"},
		{WorkerDone, "Done"},
		{WorkerState(42), "Unknown"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.state.String())
	}
}

func TestMasterStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state MasterState
		want  string
	}{
		{MasterAwaitingWorkers, "AwaitingWorkers"},
		{MasterDispatching, "Dispatching"},
		{MasterCoordinating, "Coordinating"},
		{MasterCollecting, "Collecting"},
		{MasterAssembling, "Assembling"},
		{MasterDone, "Done"},
		{MasterState(42), "Unknown"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.state.String())
	}
}
