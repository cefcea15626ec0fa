package grid

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
)

var ErrPointOutOfExtent = errors.New("point outside of the world")

// Offset is the pixel position (localX, localY) within a cell, each in [0, tileSize).
type Offset [2]int

func (o Offset) X() int { return o[0] }

func (o Offset) Y() int { return o[1] }

// PointLocation is the cell a map coordinate lies in and the offset of the coordinate within that cell.
type PointLocation struct {
	Cell   CellIndex
	Offset Offset
}

// ResolvePoint splits a continuous map coordinate into the cell containing it and the rounded offset within that cell.
// Offsets that round up to the tile size are clamped to tileSize-1 so they stay inside the cell. The point must lie in
// the half-open world [0, S) on both axes.
func (g Geometry) ResolvePoint(point orb.Point) (PointLocation, error) {
	edge := float64(g.edgeSize)
	if !inRange(point.X(), edge) || !inRange(point.Y(), edge) {
		return PointLocation{}, errors.Wrapf(ErrPointOutOfExtent, "point %v outside [0, %d)", point, g.edgeSize)
	}

	cellX, localX := g.split(point.X())
	cellY, localY := g.split(point.Y())

	return PointLocation{
		Cell:   CellIndex{cellX, cellY},
		Offset: Offset{localX, localY},
	}, nil
}

func (g Geometry) split(coordinate float64) (int, int) {
	tileSize := float64(g.tileSize)

	v := coordinate / tileSize
	cell := math.Floor(v)
	local := int(math.Round((v - cell) * tileSize))
	if local > g.tileSize-1 {
		local = g.tileSize - 1
	}

	return int(cell), local
}

// inRange is false for NaN as well.
func inRange(v float64, upper float64) bool {
	return v >= 0 && v < upper
}
