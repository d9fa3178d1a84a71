package excavation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialPolicy_FirstMatchWins(t *testing.T) {
	policy, err := NewMaterialPolicy([]MaterialRule{
		{Pattern: "diamond_ore", ToolFamily: ToolPickaxe, RequiredTier: TierIron},
		{Pattern: "*_ore", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "*_ore", Ignore: true},
	})
	require.NoError(t, err)

	rule, ok := policy.Lookup("diamond_ore")
	require.True(t, ok)
	assert.Equal(t, TierIron, rule.RequiredTier)

	rule, ok = policy.Lookup("coal_ore")
	require.True(t, ok)
	assert.Equal(t, TierWood, rule.RequiredTier)
	assert.False(t, policy.IsIgnored("coal_ore"))

	_, ok = policy.Lookup("glass")
	assert.False(t, ok)
	assert.False(t, policy.IsIgnored("glass"))
}

func TestMaterialPolicy_RejectsBadPatterns(t *testing.T) {
	_, err := NewMaterialPolicy([]MaterialRule{{Pattern: ""}})
	assert.Error(t, err)

	_, err = NewMaterialPolicy([]MaterialRule{{Pattern: "[stone"}})
	assert.Error(t, err)
}

func TestDefaultMaterialPolicy_Ignores(t *testing.T) {
	policy := DefaultMaterialPolicy()

	for _, m := range []string{"bedrock", "barrier", "end_portal_frame", "lava", "flowing_lava", "water"} {
		assert.True(t, policy.IsIgnored(m), m)
	}
	for _, m := range []string{"stone", "dirt", "iron_ore", "oak_log"} {
		assert.False(t, policy.IsIgnored(m), m)
	}
}

func TestNilPolicyIgnoresNothing(t *testing.T) {
	var policy *MaterialPolicy
	assert.False(t, policy.IsIgnored("bedrock"))
	assert.Nil(t, policy.Rules())
}

func TestParseToolTier(t *testing.T) {
	tests := []struct {
		in   string
		want ToolTier
		err  bool
	}{
		{"", TierNone, false},
		{"wood", TierWood, false},
		{"Wooden", TierWood, false},
		{" iron ", TierIron, false},
		{"netherite", TierNetherite, false},
		{"golden", TierNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseToolTier(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, TierStone < TierIron)
	assert.Equal(t, "diamond", TierDiamond.String())
}
