package grid

import "github.com/paulmach/orb"

// CellIndex is the integer address (gridX, gridY) of one cell of the world.
type CellIndex [2]int

func (c CellIndex) X() int { return c[0] }

func (c CellIndex) Y() int { return c[1] }

func (c CellIndex) isBelowOrLeftOf(other CellIndex) bool {
	return c.X() < other.X() || c.Y() < other.Y()
}

func (c CellIndex) isAboveOrRightOf(other CellIndex) bool {
	return c.X() > other.X() || c.Y() > other.Y()
}

// ToPoint returns the lower left corner of the cell in world-units.
func (c CellIndex) ToPoint(cellSize float64) orb.Point {
	return orb.Point{float64(c[0]) * cellSize, float64(c[1]) * cellSize}
}

// CellExtent is a rectangle of cells. Both corners are inclusive.
type CellExtent [2]CellIndex

func (c CellExtent) LowerLeftCell() CellIndex { return c[0] }

func (c CellExtent) UpperRightCell() CellIndex { return c[1] }

func (c CellExtent) Contains(cell CellIndex) bool {
	return !cell.isAboveOrRightOf(c.UpperRightCell()) && !cell.isBelowOrLeftOf(c.LowerLeftCell())
}

// ToBound returns the area covered by the cells in world-units.
func (c CellExtent) ToBound(cellSize float64) orb.Bound {
	maxCell := CellIndex{c[1].X() + 1, c[1].Y() + 1}
	return orb.Bound{
		Min: c[0].ToPoint(cellSize),
		Max: maxCell.ToPoint(cellSize),
	}
}

func (c CellExtent) ToPolygon(cellSize float64) orb.Polygon {
	bound := c.ToBound(cellSize)
	lowerLeft := bound.Min
	upperRight := bound.Max
	return orb.Polygon{
		orb.Ring{
			lowerLeft,
			orb.Point{upperRight.X(), lowerLeft.Y()},
			upperRight,
			orb.Point{lowerLeft.X(), upperRight.Y()},
			lowerLeft,
		},
	}
}
