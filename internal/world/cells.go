package world

import (
	"sort"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/grid"
)

// cellKey identifies one placement slot.
type cellKey struct {
	lane   int
	column int
}

// CellIndex tracks which defenders sit in which grid cell.
// Accessed only from the tick loop, no locks.
type CellIndex struct {
	cells map[cellKey]map[ecs.EntityID]struct{}
}

func NewCellIndex() *CellIndex {
	return &CellIndex{
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

// Add places a defender into the index.
func (x *CellIndex) Add(id ecs.EntityID, c grid.Cell) {
	k := cellKey{lane: c.Lane, column: c.Column}
	cell := x.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		x.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes a defender out of the index.
func (x *CellIndex) Remove(id ecs.EntityID, c grid.Cell) {
	k := cellKey{lane: c.Lane, column: c.Column}
	cell := x.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(x.cells, k)
		}
	}
}

// Nearby returns the defenders in the 3x3 neighbourhood of c, in id order.
// Caller does fine-grained distance filtering.
func (x *CellIndex) Nearby(c grid.Cell) []ecs.EntityID {
	var result []ecs.EntityID
	for dl := -1; dl <= 1; dl++ {
		for dc := -1; dc <= 1; dc++ {
			for id := range x.cells[cellKey{lane: c.Lane + dl, column: c.Column + dc}] {
				result = append(result, id)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Len returns the number of occupied cells.
func (x *CellIndex) Len() int { return len(x.cells) }
