package shared

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

// Coordinate identifies one grid cell. It is an immutable value type.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// NewCoordinate creates a coordinate from its components
func NewCoordinate(x, y, z int) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

// FromPoint returns the cell containing a continuous position
func FromPoint(p mgl64.Vec3) Coordinate {
	return Coordinate{
		X: int(math.Floor(p.X())),
		Y: int(math.Floor(p.Y())),
		Z: int(math.Floor(p.Z())),
	}
}

// Offset returns the coordinate shifted by the given deltas
func (c Coordinate) Offset(dx, dy, dz int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Add returns the component-wise sum
func (c Coordinate) Add(o Coordinate) Coordinate {
	return c.Offset(o.X, o.Y, o.Z)
}

// Sub returns the component-wise difference c - o
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// Up returns the cell directly above
func (c Coordinate) Up() Coordinate { return c.Offset(0, 1, 0) }

// Down returns the cell directly below
func (c Coordinate) Down() Coordinate { return c.Offset(0, -1, 0) }

// Vec returns the coordinate's corner as a vector
func (c Coordinate) Vec() mgl64.Vec3 {
	return mgl64.Vec3{float64(c.X), float64(c.Y), float64(c.Z)}
}

// Center returns the centre point of the cell
func (c Coordinate) Center() mgl64.Vec3 {
	return c.Vec().Add(mgl64.Vec3{0.5, 0.5, 0.5})
}

// DistanceTo returns the Euclidean distance between two cells
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	return c.Vec().Sub(o.Vec()).Len()
}

// DistanceToPoint returns the Euclidean distance from the cell's origin to a point.
// Cell origins are used so that an agent standing at (0,0,0) is at distance zero
// from cell (0,0,0).
func (c Coordinate) DistanceToPoint(p mgl64.Vec3) float64 {
	return c.Vec().Sub(p).Len()
}

// WithinBox reports whether c lies in the closed box [min, max]
func (c Coordinate) WithinBox(min, max Coordinate) bool {
	return c.X >= min.X && c.X <= max.X &&
		c.Y >= min.Y && c.Y <= max.Y &&
		c.Z >= min.Z && c.Z <= max.Z
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// NormalizeBox returns the component-wise min and max corners of the box spanned by a and b
func NormalizeBox(a, b Coordinate) (Coordinate, Coordinate) {
	min := Coordinate{X: minInt(a.X, b.X), Y: minInt(a.Y, b.Y), Z: minInt(a.Z, b.Z)}
	max := Coordinate{X: maxInt(a.X, b.X), Y: maxInt(a.Y, b.Y), Z: maxInt(a.Z, b.Z)}
	return min, max
}

// BoxVolume returns the number of cells in the closed box [min, max],
// saturating at math.MaxInt64 when the product does not fit
func BoxVolume(min, max Coordinate) int64 {
	volume := uint64(1)
	for _, extent := range [3]uint64{
		axisExtent(min.X, max.X),
		axisExtent(min.Y, max.Y),
		axisExtent(min.Z, max.Z),
	} {
		if extent == 0 {
			return math.MaxInt64
		}
		hi, lo := bits.Mul64(volume, extent)
		if hi != 0 || lo > math.MaxInt64 {
			return math.MaxInt64
		}
		volume = lo
	}
	return int64(volume)
}

// axisExtent counts the cells in [min, max] along one axis. The unsigned
// difference is exact even when max-min overflows int; 0 means the whole
// axis, which does not fit in 64 bits.
func axisExtent(min, max int) uint64 {
	return uint64(max) - uint64(min) + 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
