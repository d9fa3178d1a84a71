package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

type axisStep struct {
	dx, dz int
}

type candidate struct {
	dir    world.Direction
	dx, dz int
}

// horizontalNeighbours is the fixed world-axis order used for hazard detours
var horizontalNeighbours = []axisStep{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// snapToAxis returns the dominant horizontal axis of a heading
func snapToAxis(h mgl64.Vec3) axisStep {
	if math.Abs(h.X()) >= math.Abs(h.Z()) {
		if h.X() >= 0 {
			return axisStep{1, 0}
		}
		return axisStep{-1, 0}
	}
	if h.Z() >= 0 {
		return axisStep{0, 1}
	}
	return axisStep{0, -1}
}

// avoidanceCandidates lists the offsets tested around an obstacle in
// preference order right, left, forward, back relative to the facing axis.
// With yaw measured from +Z toward +X, facing +Z puts the agent's right at -X.
func avoidanceCandidates(facing axisStep) []candidate {
	return []candidate{
		{dir: world.DirectionRight, dx: -facing.dz, dz: facing.dx},
		{dir: world.DirectionLeft, dx: facing.dz, dz: -facing.dx},
		{dir: world.DirectionForward, dx: facing.dx, dz: facing.dz},
		{dir: world.DirectionBack, dx: -facing.dx, dz: -facing.dz},
	}
}
