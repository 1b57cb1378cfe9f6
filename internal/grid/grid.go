package grid

import (
	"fmt"
	"math"
)

// Cell is a snapped placement slot.
type Cell struct {
	Lane   int
	Column int
	X      float64 // cell centre
	Y      float64 // lane centre
}

// Grid maps pointer coordinates onto lanes and columns. Lanes are horizontal
// bands centred on fixed y values; columns are fixed-width slices starting at
// OriginX. It carries no mutable state.
type Grid struct {
	laneY      []float64
	laneHeight float64
	originX    float64
	cellWidth  float64
	columns    int
}

func New(laneY []float64, laneHeight, originX, cellWidth float64, columns int) (*Grid, error) {
	if len(laneY) == 0 {
		return nil, fmt.Errorf("grid: no lanes")
	}
	if laneHeight <= 0 || cellWidth <= 0 {
		return nil, fmt.Errorf("grid: lane height %.1f and cell width %.1f must be positive", laneHeight, cellWidth)
	}
	if columns <= 0 {
		return nil, fmt.Errorf("grid: columns %d must be positive", columns)
	}
	for i := 1; i < len(laneY); i++ {
		if laneY[i]-laneY[i-1] < laneHeight {
			return nil, fmt.Errorf("grid: lanes %d and %d overlap (spacing %.1f < height %.1f)",
				i-1, i, laneY[i]-laneY[i-1], laneHeight)
		}
	}
	ys := make([]float64, len(laneY))
	copy(ys, laneY)
	return &Grid{
		laneY:      ys,
		laneHeight: laneHeight,
		originX:    originX,
		cellWidth:  cellWidth,
		columns:    columns,
	}, nil
}

func (g *Grid) Lanes() int             { return len(g.laneY) }
func (g *Grid) Columns() int           { return g.columns }
func (g *Grid) CellWidth() float64     { return g.cellWidth }
func (g *Grid) LaneHeight() float64    { return g.laneHeight }
func (g *Grid) LaneY(lane int) float64 { return g.laneY[lane] }

// LaneAt returns the lane whose band contains y.
func (g *Grid) LaneAt(y float64) (int, bool) {
	half := g.laneHeight / 2
	for i, cy := range g.laneY {
		if y >= cy-half && y < cy+half {
			return i, true
		}
	}
	return 0, false
}

// Snap returns the cell under (x, y). ok is false outside the grid.
func (g *Grid) Snap(x, y float64) (Cell, bool) {
	lane, ok := g.LaneAt(y)
	if !ok {
		return Cell{}, false
	}
	col := int(math.Floor((x - g.originX) / g.cellWidth))
	if col < 0 || col >= g.columns {
		return Cell{}, false
	}
	return Cell{
		Lane:   lane,
		Column: col,
		X:      g.originX + (float64(col)+0.5)*g.cellWidth,
		Y:      g.laneY[lane],
	}, true
}
