package excavation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

// EnumerateBox lists every cell of the closed box spanned by a and b in
// ascending x, then y, then z order. Corner order does not matter.
func EnumerateBox(a, b shared.Coordinate) []shared.Coordinate {
	min, max := shared.NormalizeBox(a, b)
	cells := make([]shared.Coordinate, 0, shared.BoxVolume(min, max))
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				cells = append(cells, shared.Coordinate{X: x, Y: y, Z: z})
			}
		}
	}
	return cells
}

// ShouldMine reports whether a material is worth a removal action under policy
func ShouldMine(material string, policy *MaterialPolicy) bool {
	return !world.IsEmpty(material) && !policy.IsIgnored(material)
}

// FilterCells drops empty and ignored cells, preserving order
func FilterCells(cells []CellDescriptor, policy *MaterialPolicy) []CellDescriptor {
	out := make([]CellDescriptor, 0, len(cells))
	for _, c := range cells {
		if ShouldMine(c.Material, policy) {
			out = append(out, c)
		}
	}
	return out
}

// OrderByDistance sorts cells by ascending Euclidean distance from origin.
// The sort is stable so ties keep enumeration order.
func OrderByDistance(cells []CellDescriptor, origin mgl64.Vec3) {
	type keyed struct {
		cell CellDescriptor
		dist float64
	}
	ks := make([]keyed, len(cells))
	for i, c := range cells {
		ks[i] = keyed{cell: c, dist: c.Coordinate.DistanceToPoint(origin)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].dist < ks[j].dist })
	for i := range ks {
		cells[i] = ks[i].cell
	}
}
