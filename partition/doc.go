// Package partition assigns contiguous interior row ranges to workers.
//
// The scheme is deterministic: the same (interiorRows, workers) input
// always produces the same partitions, which lets the parallel and
// distributed engines agree on ownership without coordination. Remainder
// rows go to the earliest partitions.
package partition
