package partition

import (
	"fmt"

	"github.com/arloliu/heatgrid/types"
)

// Assign splits interiorRows rows among workers as evenly as possible and
// returns one Partition per worker, ordered top to bottom.
//
// Interior rows are 1-based: partitions cover the global row range
// [1, interiorRows+1) contiguously, disjointly, and exactly once (row 0 and
// row interiorRows+1 are fixed borders and never assigned). When rows do
// not divide evenly, the first interiorRows%workers partitions receive one
// extra row, so Assign(13, 4) yields sizes {4, 3, 3, 3}.
//
// Returns ErrInvalidPartition when workers < 1 or workers > interiorRows
// (a partition would be empty).
func Assign(interiorRows, workers int) ([]types.Partition, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: worker count %d must be >= 1", types.ErrInvalidPartition, workers)
	}
	if workers > interiorRows {
		return nil, fmt.Errorf("%w: %d workers for %d interior rows would leave a partition empty",
			types.ErrInvalidPartition, workers, interiorRows)
	}

	base := interiorRows / workers
	remainder := interiorRows % workers

	parts := make([]types.Partition, workers)
	start := 1
	for i := range parts {
		rows := base
		if i < remainder {
			rows++
		}
		parts[i] = types.Partition{
			WorkerID: i,
			RowStart: start,
			RowEnd:   start + rows,
		}
		start += rows
	}

	return parts, nil
}
