package heatgrid

import "github.com/arloliu/heatgrid/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the
// `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root heatgrid
// package, while still providing convenient `heatgrid.Partition`,
// `heatgrid.Logger`, etc. for users.
type (
	Partition   = types.Partition
	WorkerState = types.WorkerState
	MasterState = types.MasterState
	WorkerError = types.WorkerError
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Logger           = types.Logger
	Hooks            = types.Hooks
	MetricsCollector = types.MetricsCollector
)
