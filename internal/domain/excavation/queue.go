package excavation

import "github.com/andrescamacho/excavator-go/internal/domain/shared"

// CellDescriptor is a coordinate plus the material observed there at query time
type CellDescriptor struct {
	Coordinate shared.Coordinate `json:"coordinate"`
	Material   string            `json:"material"`
}

// MiningQueue is an ordered, front-to-back consumed list of cells.
// The only in-place mutation is truncation on cancel.
type MiningQueue struct {
	cells  []CellDescriptor
	cursor int
}

// NewMiningQueue wraps cells without copying further
func NewMiningQueue(cells []CellDescriptor) *MiningQueue {
	return &MiningQueue{cells: cells}
}

// Current returns the cell under the cursor
func (q *MiningQueue) Current() (CellDescriptor, bool) {
	if q == nil || q.cursor >= len(q.cells) {
		return CellDescriptor{}, false
	}
	return q.cells[q.cursor], true
}

// Advance moves the cursor past the current cell
func (q *MiningQueue) Advance() {
	if q != nil && q.cursor < len(q.cells) {
		q.cursor++
	}
}

// Cursor returns the index of the next cell to process
func (q *MiningQueue) Cursor() int {
	if q == nil {
		return 0
	}
	return q.cursor
}

// Len returns the total number of cells ever queued
func (q *MiningQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.cells)
}

// Remaining returns how many cells are left behind the cursor
func (q *MiningQueue) Remaining() int {
	if q == nil {
		return 0
	}
	return len(q.cells) - q.cursor
}

// Truncate discards every cell not yet processed
func (q *MiningQueue) Truncate() {
	if q != nil {
		q.cells = q.cells[:q.cursor]
	}
}

// Cells returns a copy of all queued cells
func (q *MiningQueue) Cells() []CellDescriptor {
	if q == nil {
		return nil
	}
	out := make([]CellDescriptor, len(q.cells))
	copy(out, q.cells)
	return out
}
