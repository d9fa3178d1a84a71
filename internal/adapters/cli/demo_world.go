package cli

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/adapters/world/sim"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// NewDemoWorld builds the simulated world used by --sim: a stone slab from
// y=56 to y=63 over x,z in [-32, 32] with a few ores, a lava pocket and a
// bedrock pillar. The agent stands on the slab at the origin holding a
// basic tool set.
func NewDemoWorld() *sim.World {
	w := sim.New(nil)
	w.Fill(shared.NewCoordinate(-32, 56, -32), shared.NewCoordinate(32, 63, 32), "stone")
	w.Fill(shared.NewCoordinate(-32, 63, -32), shared.NewCoordinate(32, 63, 32), "dirt")

	w.Fill(shared.NewCoordinate(4, 60, 4), shared.NewCoordinate(5, 61, 5), "iron_ore")
	w.Fill(shared.NewCoordinate(-6, 58, 3), shared.NewCoordinate(-5, 58, 4), "coal_ore")
	w.SetBlock(shared.NewCoordinate(7, 57, -7), "diamond_ore")
	w.SetBlock(shared.NewCoordinate(10, 60, 10), "lava")
	w.Fill(shared.NewCoordinate(-3, 56, -3), shared.NewCoordinate(-3, 63, -3), "bedrock")

	w.SetInventory("wooden_shovel", "stone_pickaxe", "iron_pickaxe")
	w.Teleport(mgl64.Vec3{0.5, 64, 0.5})
	return w
}
