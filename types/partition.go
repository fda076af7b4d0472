package types

import "fmt"

// Partition represents a contiguous band of interior grid rows assigned to
// one worker.
//
// Partitions are created once at engine setup and are immutable for the
// duration of a run. Adjacent partitions share a one-row halo dependency:
// partition i's last row feeds partition i+1's first row and vice versa.
type Partition struct {
	// WorkerID identifies the owning worker (0-based, ordered top to bottom).
	WorkerID int `json:"workerId"`

	// RowStart is the first interior row owned by the worker (inclusive).
	RowStart int `json:"rowStart"`

	// RowEnd is one past the last interior row owned by the worker.
	RowEnd int `json:"rowEnd"`
}

// Rows returns the number of rows owned by the partition.
func (p Partition) Rows() int {
	return p.RowEnd - p.RowStart
}

// Contains reports whether the partition owns the given global row index.
func (p Partition) Contains(row int) bool {
	return row >= p.RowStart && row < p.RowEnd
}

// String returns a compact human-readable representation, e.g. "worker-2[5:9)".
func (p Partition) String() string {
	return fmt.Sprintf("worker-%d[%d:%d)", p.WorkerID, p.RowStart, p.RowEnd)
}
