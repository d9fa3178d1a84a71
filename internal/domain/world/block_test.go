package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialClassification(t *testing.T) {
	tests := []struct {
		material string
		empty    bool
		lava     bool
		water    bool
		solid    bool
	}{
		{"", true, false, false, false},
		{"air", true, false, false, false},
		{"cave_air", true, false, false, false},
		{"stone", false, false, false, true},
		{"lava", false, true, false, false},
		{"flowing_lava", false, true, false, false},
		{"water", false, false, true, false},
		{"bubble_column_water", false, false, true, false},
		{"bedrock", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			assert.Equal(t, tt.empty, IsEmpty(tt.material))
			assert.Equal(t, tt.lava, IsLava(tt.material))
			assert.Equal(t, tt.water, IsWater(tt.material))
			assert.Equal(t, tt.lava || tt.water, IsLiquid(tt.material))
			assert.Equal(t, tt.solid, IsSolid(tt.material))
		})
	}
}

func TestEntity_IsLiving(t *testing.T) {
	assert.True(t, Entity{Kind: EntityKindMob}.IsLiving())
	assert.True(t, Entity{Kind: EntityKindPlayer}.IsLiving())
	assert.False(t, Entity{Kind: EntityKindObject}.IsLiving())
}
