package excavation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

func TestEnumerateBox_CornerOrderIsIrrelevant(t *testing.T) {
	a := shared.NewCoordinate(-1, 5, 3)
	b := shared.NewCoordinate(2, 3, 4)

	pairs := [][2]shared.Coordinate{
		{a, b},
		{b, a},
		{shared.NewCoordinate(-1, 3, 4), shared.NewCoordinate(2, 5, 3)},
		{shared.NewCoordinate(2, 5, 3), shared.NewCoordinate(-1, 3, 4)},
	}

	want := EnumerateBox(a, b)
	require.Len(t, want, 4*3*2)
	for _, p := range pairs {
		assert.Equal(t, want, EnumerateBox(p[0], p[1]))
	}
}

func TestEnumerateBox_OrderIsXThenYThenZ(t *testing.T) {
	cells := EnumerateBox(shared.NewCoordinate(0, 0, 0), shared.NewCoordinate(1, 1, 1))

	want := []shared.Coordinate{
		{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 1},
		{X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 1},
	}
	assert.Equal(t, want, cells)
}

func TestEnumerateBox_SingleCell(t *testing.T) {
	c := shared.NewCoordinate(7, -3, 2)
	assert.Equal(t, []shared.Coordinate{c}, EnumerateBox(c, c))
}

func TestFilterCells_DropsEmptyAndIgnored(t *testing.T) {
	policy := DefaultMaterialPolicy()
	cells := []CellDescriptor{
		{Coordinate: shared.NewCoordinate(0, 0, 0), Material: "stone"},
		{Coordinate: shared.NewCoordinate(0, 0, 1), Material: "air"},
		{Coordinate: shared.NewCoordinate(0, 0, 2), Material: "bedrock"},
		{Coordinate: shared.NewCoordinate(0, 0, 3), Material: "lava"},
		{Coordinate: shared.NewCoordinate(0, 0, 4), Material: "flowing_water"},
		{Coordinate: shared.NewCoordinate(0, 0, 5), Material: "iron_ore"},
		{Coordinate: shared.NewCoordinate(0, 0, 6), Material: "cave_air"},
	}

	filtered := FilterCells(cells, policy)

	require.Len(t, filtered, 2)
	assert.Equal(t, "stone", filtered[0].Material)
	assert.Equal(t, "iron_ore", filtered[1].Material)
	for _, c := range filtered {
		assert.False(t, policy.IsIgnored(c.Material))
	}
}

func TestOrderByDistance_StableAndNonDecreasing(t *testing.T) {
	var cells []CellDescriptor
	for _, c := range EnumerateBox(shared.NewCoordinate(-2, -1, -2), shared.NewCoordinate(2, 1, 2)) {
		cells = append(cells, CellDescriptor{Coordinate: c, Material: "stone"})
	}
	index := make(map[shared.Coordinate]int, len(cells))
	for i, c := range cells {
		index[c.Coordinate] = i
	}
	origin := mgl64.Vec3{0.3, 0.2, -0.7}

	OrderByDistance(cells, origin)

	for i := 0; i+1 < len(cells); i++ {
		di := cells[i].Coordinate.DistanceToPoint(origin)
		dj := cells[i+1].Coordinate.DistanceToPoint(origin)
		assert.LessOrEqual(t, di, dj)
		if di == dj {
			assert.Less(t, index[cells[i].Coordinate], index[cells[i+1].Coordinate], "ties keep enumeration order")
		}
	}
}

func TestDecomposition_TwoByTwoStoneCube(t *testing.T) {
	var cells []CellDescriptor
	for _, c := range EnumerateBox(shared.NewCoordinate(1, 1, 1), shared.NewCoordinate(0, 0, 0)) {
		cells = append(cells, CellDescriptor{Coordinate: c, Material: "stone"})
	}
	empty, err := NewMaterialPolicy(nil)
	require.NoError(t, err)

	queue := FilterCells(cells, empty)
	OrderByDistance(queue, mgl64.Vec3{0, 0, 0})

	require.Len(t, queue, 8)
	assert.Equal(t, shared.NewCoordinate(0, 0, 0), queue[0].Coordinate)
	// the three unit-distance neighbours keep x->y->z order
	assert.Equal(t, shared.NewCoordinate(0, 0, 1), queue[1].Coordinate)
	assert.Equal(t, shared.NewCoordinate(0, 1, 0), queue[2].Coordinate)
	assert.Equal(t, shared.NewCoordinate(1, 0, 0), queue[3].Coordinate)
	assert.Equal(t, shared.NewCoordinate(1, 1, 1), queue[7].Coordinate)
	for i := 0; i+1 < len(queue); i++ {
		assert.LessOrEqual(t,
			queue[i].Coordinate.DistanceToPoint(mgl64.Vec3{}),
			queue[i+1].Coordinate.DistanceToPoint(mgl64.Vec3{}))
	}
}
