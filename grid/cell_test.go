package grid

import (
	"github.com/paulmach/orb"
	"gridmap/util"
	"testing"
)

func TestCellIndex_isBelowOrLeftOf(t *testing.T) {
	cell := CellIndex{10, 10}
	/*
		[ 9,11]   [10,11]   [11,11]

		[ 9,10]   [10,10]   [11,10]

		[ 9, 9]   [10, 9]   [11, 9]
	*/

	util.AssertTrue(t, cell.isBelowOrLeftOf(CellIndex{9, 11}))
	util.AssertFalse(t, cell.isBelowOrLeftOf(CellIndex{9, 9}))
	util.AssertFalse(t, cell.isBelowOrLeftOf(CellIndex{10, 10}))
	util.AssertTrue(t, cell.isBelowOrLeftOf(CellIndex{11, 9}))
}

func TestCellIndex_isAboveOrRightOf(t *testing.T) {
	cell := CellIndex{10, 10}

	util.AssertTrue(t, cell.isAboveOrRightOf(CellIndex{9, 11}))
	util.AssertFalse(t, cell.isAboveOrRightOf(CellIndex{10, 10}))
	util.AssertFalse(t, cell.isAboveOrRightOf(CellIndex{11, 11}))
	util.AssertTrue(t, cell.isAboveOrRightOf(CellIndex{11, 9}))
}

func TestCellExtent_contains(t *testing.T) {
	extent := CellExtent{CellIndex{10, 10}, CellIndex{20, 20}}

	// Corners
	util.AssertTrue(t, extent.Contains(CellIndex{10, 10}))
	util.AssertTrue(t, extent.Contains(CellIndex{20, 10}))
	util.AssertTrue(t, extent.Contains(CellIndex{10, 20}))
	util.AssertTrue(t, extent.Contains(CellIndex{20, 20}))
	util.AssertTrue(t, extent.Contains(CellIndex{15, 15}))

	// Just outside
	util.AssertFalse(t, extent.Contains(CellIndex{9, 10}))
	util.AssertFalse(t, extent.Contains(CellIndex{10, 9}))
	util.AssertFalse(t, extent.Contains(CellIndex{21, 20}))
	util.AssertFalse(t, extent.Contains(CellIndex{20, 21}))
}

func TestCellExtent_toBound(t *testing.T) {
	extent := CellExtent{CellIndex{6, 2}, CellIndex{7, 3}}

	util.AssertEqual(t, orb.Bound{Min: orb.Point{1536, 512}, Max: orb.Point{2048, 1024}}, extent.ToBound(256))
}

func TestCellExtent_toPolygon(t *testing.T) {
	extent := CellExtent{CellIndex{1, 2}, CellIndex{1, 2}}

	polygon := extent.ToPolygon(256)

	util.AssertEqual(t, orb.Polygon{
		orb.Ring{
			orb.Point{256, 512},
			orb.Point{512, 512},
			orb.Point{512, 768},
			orb.Point{256, 768},
			orb.Point{256, 512},
		},
	}, polygon)
}
