package grid

import (
	"github.com/paulmach/orb"
	"gridmap/util"
	"math"
	"testing"
)

func TestResolvePoint(t *testing.T) {
	g := newDefaultGeometry(t)

	// x = 997.0039..., y = 1001.9921...
	location, err := g.ResolvePoint(orb.Point{255233, 256510})

	util.AssertNil(t, err)
	util.AssertEqual(t, CellIndex{997, 1001}, location.Cell)
	util.AssertEqual(t, Offset{1, 254}, location.Offset)
}

func TestResolvePoint_initialMapCenter(t *testing.T) {
	g := newDefaultGeometry(t)

	// x = 996.9921..., y = 1001.9921...
	location, err := g.ResolvePoint(orb.Point{255230, 256510})

	util.AssertNil(t, err)
	util.AssertEqual(t, CellIndex{996, 1001}, location.Cell)
	util.AssertEqual(t, Offset{254, 254}, location.Offset)
}

func TestResolvePoint_cellBoundary(t *testing.T) {
	g := newDefaultGeometry(t)

	for _, k := range []int{0, 1, 997, 4095} {
		location, err := g.ResolvePoint(orb.Point{float64(256 * k), float64(256 * k)})
		util.AssertNil(t, err)
		util.AssertEqual(t, CellIndex{k, k}, location.Cell)
		util.AssertEqual(t, Offset{0, 0}, location.Offset)
	}
}

func TestResolvePoint_clampsRoundedUpperBoundary(t *testing.T) {
	g := newDefaultGeometry(t)

	location, err := g.ResolvePoint(orb.Point{255.9, 511.7})

	util.AssertNil(t, err)
	util.AssertEqual(t, CellIndex{0, 1}, location.Cell)
	util.AssertEqual(t, Offset{255, 255}, location.Offset)
}

func TestResolvePoint_offsetRange(t *testing.T) {
	g := newDefaultGeometry(t)

	for x := 0.0; x < 1024; x += 0.37 {
		location, err := g.ResolvePoint(orb.Point{x, 1024 - x})
		util.AssertNil(t, err)
		util.AssertTrue(t, location.Offset.X() >= 0 && location.Offset.X() < 256)
		util.AssertTrue(t, location.Offset.Y() >= 0 && location.Offset.Y() < 256)
	}
}

func TestResolvePoint_isPure(t *testing.T) {
	g := newDefaultGeometry(t)
	point := orb.Point{12345.6, 65432.1}

	first, err := g.ResolvePoint(point)
	util.AssertNil(t, err)
	second, err := g.ResolvePoint(point)
	util.AssertNil(t, err)

	util.AssertEqual(t, first, second)
}

func TestResolvePoint_outsideOfWorld(t *testing.T) {
	g := newDefaultGeometry(t)

	for _, point := range []orb.Point{
		{-0.5, 10},
		{10, -1},
		{1048576, 10},
		{10, 1048576},
		{math.NaN(), 10},
		{10, math.Inf(1)},
	} {
		_, err := g.ResolvePoint(point)
		util.AssertErrorIs(t, ErrPointOutOfExtent, err)
	}
}
