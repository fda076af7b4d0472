package heatgrid

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/heatgrid/types"
	"github.com/zeebo/xxh3"
)

// Grid is a 2D temperature field with fixed boundary conditions.
//
// Cells are stored row-major in two buffers, cur and next. Jacobi
// relaxation requires every read of a round to observe the previous
// round's values, so a sweep writes only to next and the buffers swap
// roles once per round.
//
// Invariant: border cells (row 0, row height-1, col 0, col width-1) hold
// boundaryTemp in both buffers for the grid's whole lifetime; Sweep never
// writes them.
//
// Grid is not safe for unsynchronized concurrent mutation. The parallel
// engine keeps writes safe by giving each worker a disjoint row range and
// serializing the buffer swap behind the iteration barrier.
type Grid struct {
	width  int
	height int

	boundaryTemp float64
	initialTemp  float64

	cur  []float64
	next []float64
}

// NewGrid creates a grid with borders fixed at boundaryTemp and the
// interior at initialTemp. Both buffers are initialized identically.
//
// The smallest meaningful grid is 3x3 (one interior cell); smaller
// dimensions fail with ErrInvalidConfig.
func NewGrid(width, height int, boundaryTemp, initialTemp float64) (*Grid, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: grid must be at least 3x3, got %dx%d",
			types.ErrInvalidConfig, width, height)
	}
	if !isFiniteTemp(boundaryTemp) || !isFiniteTemp(initialTemp) {
		return nil, fmt.Errorf("%w: temperatures must be finite", types.ErrInvalidConfig)
	}

	g := &Grid{
		width:        width,
		height:       height,
		boundaryTemp: boundaryTemp,
		initialTemp:  initialTemp,
		cur:          make([]float64, width*height),
		next:         make([]float64, width*height),
	}

	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			v := initialTemp
			if r == 0 || r == height-1 || c == 0 || c == width-1 {
				v = boundaryTemp
			}
			g.cur[r*width+c] = v
			g.next[r*width+c] = v
		}
	}

	return g, nil
}

func isFiniteTemp(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// BoundaryTemp returns the fixed border temperature.
func (g *Grid) BoundaryTemp() float64 { return g.boundaryTemp }

// InitialTemp returns the interior temperature at construction.
func (g *Grid) InitialTemp() float64 { return g.initialTemp }

// InteriorRows returns the number of mutable rows (height minus the two
// border rows).
func (g *Grid) InteriorRows() int { return g.height - 2 }

// Get returns the current value of the cell at (row, col).
//
// Returns ErrOutOfBounds if the coordinate exceeds the declared dimensions.
func (g *Grid) Get(row, col int) (float64, error) {
	if err := g.check(row, col); err != nil {
		return 0, err
	}

	return g.cur[row*g.width+col], nil
}

// Set overwrites the current value of the cell at (row, col).
//
// Returns ErrOutOfBounds if the coordinate exceeds the declared dimensions.
func (g *Grid) Set(row, col int, value float64) error {
	if err := g.check(row, col); err != nil {
		return err
	}

	g.cur[row*g.width+col] = value

	return nil
}

func (g *Grid) check(row, col int) error {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d",
			types.ErrOutOfBounds, row, col, g.width, g.height)
	}

	return nil
}

// Row returns a copy of the current values of the given row.
func (g *Grid) Row(row int) ([]float64, error) {
	if row < 0 || row >= g.height {
		return nil, fmt.Errorf("%w: row %d outside height %d", types.ErrOutOfBounds, row, g.height)
	}

	out := make([]float64, g.width)
	copy(out, g.cur[row*g.width:(row+1)*g.width])

	return out, nil
}

// SetRow overwrites the current values of the given row.
//
// Used by the distributed engine to import halo rows and assemble results;
// values must have exactly Width elements.
func (g *Grid) SetRow(row int, values []float64) error {
	if row < 0 || row >= g.height {
		return fmt.Errorf("%w: row %d outside height %d", types.ErrOutOfBounds, row, g.height)
	}
	if len(values) != g.width {
		return fmt.Errorf("%w: row length %d, want %d", types.ErrOutOfBounds, len(values), g.width)
	}

	copy(g.cur[row*g.width:(row+1)*g.width], values)

	return nil
}

// Snapshot returns an immutable deep copy of the grid for output and
// inspection. The copy does not share buffers with the live grid.
func (g *Grid) Snapshot() *Grid {
	s := &Grid{
		width:        g.width,
		height:       g.height,
		boundaryTemp: g.boundaryTemp,
		initialTemp:  g.initialTemp,
		cur:          make([]float64, len(g.cur)),
		next:         make([]float64, len(g.next)),
	}
	copy(s.cur, g.cur)
	copy(s.next, g.cur)

	return s
}

// Sweep performs one Jacobi relaxation pass over rows [rowStart, rowEnd),
// reading cur and writing next:
//
//	next[r][c] = (cur[r-1][c] + cur[r+1][c] + cur[r][c-1] + cur[r][c+1]) / 4
//
// Border columns and any border rows inside the range are skipped. Returns
// the maximum absolute cell change of the pass.
//
// Sweep is safe for concurrent use as long as row ranges are disjoint: it
// only reads cur and only writes next within [rowStart, rowEnd).
func (g *Grid) Sweep(rowStart, rowEnd int) float64 {
	w := g.width
	maxDelta := 0.0

	if rowStart < 1 {
		rowStart = 1
	}
	if rowEnd > g.height-1 {
		rowEnd = g.height - 1
	}

	for r := rowStart; r < rowEnd; r++ {
		above := g.cur[(r-1)*w:]
		row := g.cur[r*w:]
		below := g.cur[(r+1)*w:]
		out := g.next[r*w:]

		for c := 1; c < w-1; c++ {
			v := (above[c] + below[c] + row[c-1] + row[c+1]) / 4
			d := math.Abs(v - row[c])
			if d > maxDelta {
				maxDelta = d
			}
			out[c] = v
		}
	}

	return maxDelta
}

// Swap exchanges the roles of the cur and next buffers, publishing the
// last sweep as the basis for the next round.
//
// In the parallel engine exactly one goroutine calls Swap per barrier
// epoch, after all workers have arrived.
func (g *Grid) Swap() {
	g.cur, g.next = g.next, g.cur
}

// AverageInterior returns the mean temperature of the interior cells.
func (g *Grid) AverageInterior() float64 {
	sum := 0.0
	for r := 1; r < g.height-1; r++ {
		row := g.cur[r*g.width:]
		for c := 1; c < g.width-1; c++ {
			sum += row[c]
		}
	}

	return sum / float64((g.height-2)*(g.width-2))
}

// MaxDiff returns the maximum absolute cell-wise difference between two
// grids of identical dimensions. Used by equivalence checks between
// engines.
func (g *Grid) MaxDiff(other *Grid) (float64, error) {
	if other == nil || other.width != g.width || other.height != g.height {
		return 0, fmt.Errorf("%w: dimension mismatch", types.ErrOutOfBounds)
	}

	maxDiff := 0.0
	for i := range g.cur {
		d := math.Abs(g.cur[i] - other.cur[i])
		if d > maxDiff {
			maxDiff = d
		}
	}

	return maxDiff, nil
}

// Fingerprint returns an xxh3 hash of the current buffer. Two grids with
// bit-identical cell values produce the same fingerprint.
func (g *Grid) Fingerprint() uint64 {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&g.cur[0])), len(g.cur)*8)

	return xxh3.Hash(raw)
}
