package world

import (
	"math"

	"github.com/udisondev/hostile/internal/model"
)

// DefaultCellSize is the edge of a broad-phase cell in meters.
const DefaultCellSize = 8.0

// cellKey addresses one cell of the XZ grid.
type cellKey struct {
	X, Z int32
}

// cellOf converts world coordinates to a cell index.
func cellOf(x, z, size float64) cellKey {
	return cellKey{
		X: int32(math.Floor(x / size)),
		Z: int32(math.Floor(z / size)),
	}
}

// obstacleGrid buckets obstacle indices by the XZ cells their footprint covers.
// Immutable after construction.
type obstacleGrid struct {
	size  float64
	cells map[cellKey][]int
}

func newObstacleGrid(boxes []Box, size float64) *obstacleGrid {
	if size <= 0 {
		size = DefaultCellSize
	}
	g := &obstacleGrid{size: size, cells: make(map[cellKey][]int)}
	for i, b := range boxes {
		lo := cellOf(b.Min.X, b.Min.Z, size)
		hi := cellOf(b.Max.X, b.Max.Z, size)
		for cx := lo.X; cx <= hi.X; cx++ {
			for cz := lo.Z; cz <= hi.Z; cz++ {
				k := cellKey{cx, cz}
				g.cells[k] = append(g.cells[k], i)
			}
		}
	}
	return g
}

// candidates returns indices of obstacles whose cells overlap the XZ bounding
// rectangle of the segment. Conservative: may include obstacles the ray misses.
func (g *obstacleGrid) candidates(from, to model.Vec3, buf []int) []int {
	lo := cellOf(min(from.X, to.X), min(from.Z, to.Z), g.size)
	hi := cellOf(max(from.X, to.X), max(from.Z, to.Z), g.size)

	seen := make(map[int]struct{})
	for cx := lo.X; cx <= hi.X; cx++ {
		for cz := lo.Z; cz <= hi.Z; cz++ {
			for _, i := range g.cells[cellKey{cx, cz}] {
				if _, ok := seen[i]; ok {
					continue
				}
				seen[i] = struct{}{}
				buf = append(buf, i)
			}
		}
	}
	return buf
}

// Len returns number of non-empty cells.
func (g *obstacleGrid) Len() int {
	return len(g.cells)
}
