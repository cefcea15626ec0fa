package grid

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math/bits"
)

var ErrInvalidGeometry = errors.New("invalid grid geometry")

// Geometry describes the square world grid and its tile pyramid. The world spans [0,0] to [edgeSize,edgeSize]
// world-units, each cell spans tileSize world-units and each zoom level L in [minZoom, maxZoom] renders with a
// resolution of 2^(L-1) world-units per pixel. Level 1 is the most detailed level (one cell per tile).
//
// A Geometry is an immutable value and can be shared between goroutines.
type Geometry struct {
	edgeSize int
	minZoom  int
	maxZoom  int
	tileSize int
}

// NewGeometry validates the given configuration and returns the geometry for it. Invalid configurations are rejected
// and never truncated to something valid.
func NewGeometry(edgeSize int, minZoom int, maxZoom int, tileSize int) (Geometry, error) {
	if !isPowerOfTwo(tileSize) {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "tile size %d is not a power of two", tileSize)
	}
	if !isPowerOfTwo(edgeSize) {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "edge size %d is not a power of two", edgeSize)
	}
	if minZoom < 1 {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "min zoom %d is below 1", minZoom)
	}
	if minZoom > maxZoom {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "zoom range [%d, %d] is empty", minZoom, maxZoom)
	}

	// Both sizes are powers of two, so divisibility is a comparison of their exponents.
	edgeBits := bits.TrailingZeros(uint(edgeSize))
	tileBits := bits.TrailingZeros(uint(tileSize))
	if edgeBits < maxZoom {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "edge size %d is not divisible by 2^%d", edgeSize, maxZoom)
	}
	if edgeBits < tileBits+maxZoom-1 {
		return Geometry{}, errors.Wrapf(ErrInvalidGeometry, "edge size %d is smaller than one tile of size %d at zoom level %d", edgeSize, tileSize, maxZoom)
	}

	return Geometry{
		edgeSize: edgeSize,
		minZoom:  minZoom,
		maxZoom:  maxZoom,
		tileSize: tileSize,
	}, nil
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

func (g Geometry) EdgeSize() int { return g.edgeSize }

func (g Geometry) MinZoom() int { return g.minZoom }

func (g Geometry) MaxZoom() int { return g.maxZoom }

func (g Geometry) TileSize() int { return g.tileSize }

// Extent returns the world rectangle [0,0,S,S].
func (g Geometry) Extent() orb.Bound {
	return orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{float64(g.edgeSize), float64(g.edgeSize)},
	}
}

// CellsPerEdge is the number of cells along one side of the world.
func (g Geometry) CellsPerEdge() int {
	return g.edgeSize / g.tileSize
}

// CellExtent returns the extent of all cells of the world, both corners inclusive.
func (g Geometry) CellExtent() CellExtent {
	last := g.CellsPerEdge() - 1
	return CellExtent{CellIndex{0, 0}, CellIndex{last, last}}
}

// Resolutions returns one resolution per zoom level, ordered from maxZoom down to minZoom. The position within the
// slice is the zoom index a tile-rendering library uses for that level.
func (g Geometry) Resolutions() []float64 {
	resolutions := make([]float64, 0, g.maxZoom-g.minZoom+1)
	for level := g.maxZoom; level >= g.minZoom; level-- {
		resolutions = append(resolutions, float64(cellsPerTileEdge(level)))
	}
	return resolutions
}

// Resolution returns the world-units per pixel at the given zoom level.
func (g Geometry) Resolution(level int) (float64, error) {
	if !g.validLevel(level) {
		return 0, errors.Wrapf(ErrTileOutOfRange, "zoom level %d outside [%d, %d]", level, g.minZoom, g.maxZoom)
	}
	return float64(cellsPerTileEdge(level)), nil
}

// ZoomLevel converts the library zoom index z into the zoom level of the grid.
func (g Geometry) ZoomLevel(z int) (int, error) {
	if z < 0 || z > g.maxZoom-g.minZoom {
		return 0, errors.Wrapf(ErrTileOutOfRange, "zoom index %d outside [0, %d]", z, g.maxZoom-g.minZoom)
	}
	level := z - g.maxZoom
	if level < 0 {
		level = -level
	}
	return level, nil
}

// LibraryZoom is the inverse of ZoomLevel.
func (g Geometry) LibraryZoom(level int) (int, error) {
	if !g.validLevel(level) {
		return 0, errors.Wrapf(ErrTileOutOfRange, "zoom level %d outside [%d, %d]", level, g.minZoom, g.maxZoom)
	}
	return g.maxZoom - level, nil
}

// TilesPerEdge is the number of tiles along one side of the world at the given zoom level.
func (g Geometry) TilesPerEdge(level int) (int, error) {
	if !g.validLevel(level) {
		return 0, errors.Wrapf(ErrTileOutOfRange, "zoom level %d outside [%d, %d]", level, g.minZoom, g.maxZoom)
	}
	return g.CellsPerEdge() / cellsPerTileEdge(level), nil
}

func (g Geometry) validLevel(level int) bool {
	return level >= g.minZoom && level <= g.maxZoom
}

// cellsPerTileEdge is 2^(level-1). Callers guarantee level >= 1.
func cellsPerTileEdge(level int) int {
	return 1 << (level - 1)
}
