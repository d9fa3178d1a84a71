package excavation

import (
	"fmt"
	"path"
	"strings"
)

// ToolTier orders tool materials from weakest to strongest
type ToolTier int

const (
	TierNone ToolTier = iota
	TierWood
	TierStone
	TierIron
	TierDiamond
	TierNetherite
)

var tierNames = []string{"none", "wooden", "stone", "iron", "diamond", "netherite"}

func (t ToolTier) String() string {
	if t < TierNone || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseToolTier parses a tier name. "wood" and "wooden" are both accepted.
func ParseToolTier(s string) (ToolTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TierNone, nil
	case "wood", "wooden":
		return TierWood, nil
	case "stone":
		return TierStone, nil
	case "iron":
		return TierIron, nil
	case "diamond":
		return TierDiamond, nil
	case "netherite":
		return TierNetherite, nil
	}
	return TierNone, fmt.Errorf("unknown tool tier %q", s)
}

// ToolFamily is the kind of tool that breaks a material efficiently
type ToolFamily string

const (
	ToolNone    ToolFamily = ""
	ToolPickaxe ToolFamily = "pickaxe"
	ToolShovel  ToolFamily = "shovel"
	ToolAxe     ToolFamily = "axe"
)

// MaterialRule is one entry of a MaterialPolicy. Pattern is either an exact
// material identifier or a glob over identifiers ("*_ore").
type MaterialRule struct {
	Pattern      string     `yaml:"pattern" json:"pattern"`
	Ignore       bool       `yaml:"ignore" json:"ignore"`
	ToolFamily   ToolFamily `yaml:"tool" json:"tool,omitempty"`
	RequiredTier ToolTier   `yaml:"-" json:"required_tier"`
}

// Matches reports whether the rule applies to a material
func (r MaterialRule) Matches(material string) bool {
	if r.Pattern == material {
		return true
	}
	ok, err := path.Match(r.Pattern, material)
	return err == nil && ok
}

// MaterialPolicy maps materials to ignore flags and tool requirements.
// Rules are evaluated in order; the first match wins.
type MaterialPolicy struct {
	rules []MaterialRule
}

// NewMaterialPolicy creates a policy from rules, rejecting malformed patterns
func NewMaterialPolicy(rules []MaterialRule) (*MaterialPolicy, error) {
	copied := make([]MaterialRule, len(rules))
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		if _, err := path.Match(r.Pattern, ""); err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, r.Pattern, err)
		}
		copied[i] = r
	}
	return &MaterialPolicy{rules: copied}, nil
}

// Rules returns a copy of the policy rules
func (p *MaterialPolicy) Rules() []MaterialRule {
	if p == nil {
		return nil
	}
	out := make([]MaterialRule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Lookup returns the first rule matching material
func (p *MaterialPolicy) Lookup(material string) (MaterialRule, bool) {
	if p == nil {
		return MaterialRule{}, false
	}
	for _, r := range p.rules {
		if r.Matches(material) {
			return r, true
		}
	}
	return MaterialRule{}, false
}

// IsIgnored reports whether material must never be excavated
func (p *MaterialPolicy) IsIgnored(material string) bool {
	r, ok := p.Lookup(material)
	return ok && r.Ignore
}

// DefaultMaterialPolicy is used when no policy file is configured
func DefaultMaterialPolicy() *MaterialPolicy {
	p, _ := NewMaterialPolicy([]MaterialRule{
		{Pattern: "bedrock", Ignore: true},
		{Pattern: "barrier", Ignore: true},
		{Pattern: "end_portal_frame", Ignore: true},
		{Pattern: "*lava*", Ignore: true},
		{Pattern: "*water*", Ignore: true},
		{Pattern: "obsidian", ToolFamily: ToolPickaxe, RequiredTier: TierDiamond},
		{Pattern: "ancient_debris", ToolFamily: ToolPickaxe, RequiredTier: TierDiamond},
		{Pattern: "diamond_ore", ToolFamily: ToolPickaxe, RequiredTier: TierIron},
		{Pattern: "deepslate_diamond_ore", ToolFamily: ToolPickaxe, RequiredTier: TierIron},
		{Pattern: "gold_ore", ToolFamily: ToolPickaxe, RequiredTier: TierIron},
		{Pattern: "iron_ore", ToolFamily: ToolPickaxe, RequiredTier: TierStone},
		{Pattern: "*_ore", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "stone", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "cobblestone", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "deepslate", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "netherrack", ToolFamily: ToolPickaxe, RequiredTier: TierWood},
		{Pattern: "dirt", ToolFamily: ToolShovel},
		{Pattern: "grass_block", ToolFamily: ToolShovel},
		{Pattern: "gravel", ToolFamily: ToolShovel},
		{Pattern: "sand", ToolFamily: ToolShovel},
		{Pattern: "*_log", ToolFamily: ToolAxe},
		{Pattern: "*_planks", ToolFamily: ToolAxe},
	})
	return p
}
