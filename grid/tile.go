package grid

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

var ErrTileOutOfRange = errors.New("tile out of range")

// TileCoord is a tile address as a tile-rendering library requests it. Z is the library zoom index (0 is the first
// entry of Geometry.Resolutions), X the column and Y the row. The library's row axis points upwards and starts at -1
// for the bottom row of the world.
type TileCoord struct {
	Z int
	X int
	Y int
}

func (t TileCoord) String() string {
	return fmt.Sprintf("z=%d, x=%d, y=%d", t.Z, t.X, t.Y)
}

// TileAddress is the grid-relative address of a tile image: the zoom level and the lower left cell the image starts
// at.
type TileAddress struct {
	ZoomLevel        int
	Cell             CellIndex
	CellsPerTileEdge int
}

// String returns the image identifier "{zoomLevel}-{cellX}-{cellY}".
func (a TileAddress) String() string {
	return fmt.Sprintf("%d-%d-%d", a.ZoomLevel, a.Cell.X(), a.Cell.Y())
}

// Locator returns the URL of the tile image below the given base URL.
func (a TileAddress) Locator(baseUrl string) string {
	return fmt.Sprintf("%s/map-%s-objects.jpg", strings.TrimSuffix(baseUrl, "/"), a.String())
}

// CellExtent returns the cells covered by this tile, both corners inclusive.
func (a TileAddress) CellExtent() CellExtent {
	last := a.CellsPerTileEdge - 1
	return CellExtent{a.Cell, CellIndex{a.Cell.X() + last, a.Cell.Y() + last}}
}

// ResolveTile converts the library tile coordinate into the address of the tile image. This is the only place knowing
// about the inverted and one-based row axis of the library.
func (g Geometry) ResolveTile(tile TileCoord) (TileAddress, error) {
	zoomLevel, err := g.ZoomLevel(tile.Z)
	if err != nil {
		return TileAddress{}, err
	}

	tilesPerEdge, _ := g.TilesPerEdge(zoomLevel)
	row := abs(tile.Y)
	if tile.X < 0 || tile.X >= tilesPerEdge {
		return TileAddress{}, errors.Wrapf(ErrTileOutOfRange, "column of tile %s outside [0, %d)", tile, tilesPerEdge)
	}
	if row < 1 || row > tilesPerEdge {
		return TileAddress{}, errors.Wrapf(ErrTileOutOfRange, "row of tile %s outside [1, %d]", tile, tilesPerEdge)
	}

	cellsPerTile := cellsPerTileEdge(zoomLevel)
	return TileAddress{
		ZoomLevel:        zoomLevel,
		Cell:             CellIndex{tile.X * cellsPerTile, (row - 1) * cellsPerTile},
		CellsPerTileEdge: cellsPerTile,
	}, nil
}

// VisitTiles calls the visitor for every tile of the given zoom level, row by row starting at the bottom of the world.
// Visiting stops at the first error returned by the visitor.
func (g Geometry) VisitTiles(level int, visitor func(TileCoord, TileAddress) error) error {
	z, err := g.LibraryZoom(level)
	if err != nil {
		return err
	}
	tilesPerEdge, _ := g.TilesPerEdge(level)

	for row := 1; row <= tilesPerEdge; row++ {
		for x := 0; x < tilesPerEdge; x++ {
			tile := TileCoord{Z: z, X: x, Y: -row}
			address, err := g.ResolveTile(tile)
			if err != nil {
				return err
			}
			if err = visitor(tile, address); err != nil {
				return err
			}
		}
	}

	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
