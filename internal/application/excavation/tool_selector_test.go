package excavation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
)

func TestToolSelector_Select(t *testing.T) {
	selector := NewToolSelector(excavation.DefaultMaterialPolicy())

	tests := []struct {
		name      string
		material  string
		inventory []string
		want      string
		wantOK    bool
	}{
		{"strongest pickaxe for stone", "stone", []string{"wooden_pickaxe", "diamond_pickaxe", "iron_pickaxe"}, "diamond_pickaxe", true},
		{"tier below requirement is ignored", "diamond_ore", []string{"stone_pickaxe"}, "", false},
		{"meets requirement exactly", "diamond_ore", []string{"stone_pickaxe", "iron_pickaxe"}, "iron_pickaxe", true},
		{"family must match", "dirt", []string{"netherite_pickaxe", "wooden_shovel"}, "wooden_shovel", true},
		{"glob rule", "coal_ore", []string{"wooden_pickaxe"}, "wooden_pickaxe", true},
		{"material without rule needs no tool", "glass", []string{"iron_pickaxe"}, "", false},
		{"non-tool items are skipped", "stone", []string{"cobblestone", "torch", "golden_pickaxe"}, "", false},
		{"empty inventory", "stone", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := selector.Select(tt.material, tt.inventory)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
