package world

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Block is a snapshot of the material occupying one cell
type Block struct {
	Material string `json:"material"`
}

// Entity is a snapshot of one entity known to the world client
type Entity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     EntityKind `json:"kind"`
	Position mgl64.Vec3 `json:"position"`
}

// EntityKind distinguishes living entities from objects such as dropped items
type EntityKind string

const (
	EntityKindMob    EntityKind = "mob"
	EntityKindPlayer EntityKind = "player"
	EntityKindObject EntityKind = "object"
)

// IsLiving reports whether the entity can be classified as hostile or peaceful
func (e Entity) IsLiving() bool {
	return e.Kind == EntityKindMob || e.Kind == EntityKindPlayer
}

var emptyMaterials = map[string]struct{}{
	"":         {},
	"air":      {},
	"cave_air": {},
	"void_air": {},
}

// IsEmpty reports whether a material means no matter is present
func IsEmpty(material string) bool {
	_, ok := emptyMaterials[material]
	return ok
}

// IsLava reports whether a material is a lava-like hazardous liquid
func IsLava(material string) bool {
	return strings.Contains(material, "lava")
}

// IsWater reports whether a material is water-like
func IsWater(material string) bool {
	return strings.Contains(material, "water")
}

// IsLiquid reports whether a material flows
func IsLiquid(material string) bool {
	return IsLava(material) || IsWater(material)
}

// IsSolid reports whether a material blocks movement: neither empty nor liquid
func IsSolid(material string) bool {
	return !IsEmpty(material) && !IsLiquid(material)
}
