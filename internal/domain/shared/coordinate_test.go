package shared

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFromPoint_Floors(t *testing.T) {
	assert.Equal(t, NewCoordinate(0, 64, -1), FromPoint(mgl64.Vec3{0.99, 64.0, -0.01}))
	assert.Equal(t, NewCoordinate(-2, -1, 3), FromPoint(mgl64.Vec3{-1.5, -0.5, 3.5}))
}

func TestNormalizeBox(t *testing.T) {
	min, max := NormalizeBox(NewCoordinate(3, -1, 5), NewCoordinate(-2, 4, 5))

	assert.Equal(t, NewCoordinate(-2, -1, 5), min)
	assert.Equal(t, NewCoordinate(3, 4, 5), max)
	assert.Equal(t, int64(6*6*1), BoxVolume(min, max))
}

func TestBoxVolume_SaturatesOnOverflow(t *testing.T) {
	tests := []struct {
		name     string
		min, max Coordinate
		want     int64
	}{
		{"single cell", NewCoordinate(5, 5, 5), NewCoordinate(5, 5, 5), 1},
		{"flat slab", NewCoordinate(0, 0, 0), NewCoordinate(9, 0, 9), 100},
		{"product wraps to zero", NewCoordinate(0, 0, 0), NewCoordinate(1<<32-1, 1<<32-1, 0), math.MaxInt64},
		{"product exceeds int64", NewCoordinate(0, 0, 0), NewCoordinate(1<<31, 1<<31, 3), math.MaxInt64},
		{"whole axis", NewCoordinate(math.MinInt, 0, 0), NewCoordinate(math.MaxInt, 0, 0), math.MaxInt64},
		{"axis wider than int", NewCoordinate(math.MinInt, 0, 0), NewCoordinate(1, 0, 0), math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoxVolume(tt.min, tt.max))
		})
	}
}

func TestCoordinate_Arithmetic(t *testing.T) {
	c := NewCoordinate(1, 2, 3)

	assert.Equal(t, NewCoordinate(2, 4, 6), c.Add(c))
	assert.Equal(t, NewCoordinate(0, 0, 0), c.Sub(c))
	assert.Equal(t, NewCoordinate(1, 3, 3), c.Up())
	assert.Equal(t, NewCoordinate(1, 1, 3), c.Down())
	assert.Equal(t, mgl64.Vec3{1.5, 2.5, 3.5}, c.Center())
	assert.InDelta(t, 5.0, NewCoordinate(0, 0, 0).DistanceTo(NewCoordinate(3, 4, 0)), 1e-9)
	assert.Equal(t, "(1,2,3)", c.String())
}

func TestCoordinate_DistanceToPointUsesCellOrigin(t *testing.T) {
	assert.Equal(t, 0.0, NewCoordinate(0, 0, 0).DistanceToPoint(mgl64.Vec3{0, 0, 0}))
	assert.InDelta(t, 1.0, NewCoordinate(1, 0, 0).DistanceToPoint(mgl64.Vec3{0, 0, 0}), 1e-9)
}

func TestCoordinate_WithinBox(t *testing.T) {
	min, max := NewCoordinate(0, 0, 0), NewCoordinate(2, 2, 2)

	assert.True(t, NewCoordinate(0, 0, 0).WithinBox(min, max))
	assert.True(t, NewCoordinate(2, 2, 2).WithinBox(min, max))
	assert.False(t, NewCoordinate(3, 0, 0).WithinBox(min, max))
	assert.False(t, NewCoordinate(0, -1, 0).WithinBox(min, max))
}
