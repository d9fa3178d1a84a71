package world

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Client is the world collaborator consumed by the excavation core.
// It supplies block and entity state and exposes primitive actions.
// Implementations may return stale data; callers re-read before acting.
type Client interface {
	// GetBlock returns the block at c. found is false when the cell has no data
	// or no longer exists.
	GetBlock(ctx context.Context, c shared.Coordinate) (block Block, found bool, err error)

	// NearbyEntities returns every entity the client currently knows about
	NearbyEntities(ctx context.Context) ([]Entity, error)

	// BreakBlock removes the block at c
	BreakBlock(ctx context.Context, c shared.Coordinate) error

	// Equip moves the item into the agent's hand. Best effort.
	Equip(ctx context.Context, item string) error

	// Inventory lists the item identifiers currently held
	Inventory(ctx context.Context) ([]string, error)

	// SetMovementIntent holds or releases a movement control
	SetMovementIntent(ctx context.Context, dir Direction, active bool) error

	// Face orients the agent's view. yaw is measured in radians from +Z toward +X.
	Face(ctx context.Context, yaw, pitch float64) error

	// AgentPosition returns the agent's continuous position
	AgentPosition(ctx context.Context) (mgl64.Vec3, error)

	// AgentVelocity returns the agent's current velocity
	AgentVelocity(ctx context.Context) (mgl64.Vec3, error)
}

// Direction is a movement control
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionBack    Direction = "back"
	DirectionLeft    Direction = "left"
	DirectionRight   Direction = "right"
	DirectionJump    Direction = "jump"
)

// AllDirections lists every movement control, in release order
var AllDirections = []Direction{DirectionForward, DirectionBack, DirectionLeft, DirectionRight, DirectionJump}

// ReleaseAll clears every movement intent, returning the first error encountered
func ReleaseAll(ctx context.Context, c Client) error {
	var firstErr error
	for _, d := range AllDirections {
		if err := c.SetMovementIntent(ctx, d, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
