package excavation

import (
	"strings"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
)

// ToolSelector picks the held item best suited to a material
type ToolSelector struct {
	policy *excavation.MaterialPolicy
}

// NewToolSelector creates a selector over policy
func NewToolSelector(policy *excavation.MaterialPolicy) *ToolSelector {
	return &ToolSelector{policy: policy}
}

// Select returns the strongest item in inventory of the tool family the
// policy assigns to material whose tier meets the required tier.
// ok is false when the material needs no tool or nothing held qualifies.
func (s *ToolSelector) Select(material string, inventory []string) (item string, ok bool) {
	rule, found := s.policy.Lookup(material)
	if !found || rule.ToolFamily == excavation.ToolNone {
		return "", false
	}

	best := excavation.TierNone
	for _, candidate := range inventory {
		tier, family, parsed := parseTool(candidate)
		if !parsed || family != rule.ToolFamily || tier < rule.RequiredTier {
			continue
		}
		if !ok || tier > best {
			item, best, ok = candidate, tier, true
		}
	}
	return item, ok
}

// parseTool splits identifiers such as "iron_pickaxe" into tier and family
func parseTool(item string) (excavation.ToolTier, excavation.ToolFamily, bool) {
	idx := strings.LastIndex(item, "_")
	if idx <= 0 || idx == len(item)-1 {
		return excavation.TierNone, excavation.ToolNone, false
	}
	tier, err := excavation.ParseToolTier(item[:idx])
	if err != nil || tier == excavation.TierNone {
		return excavation.TierNone, excavation.ToolNone, false
	}
	family := excavation.ToolFamily(item[idx+1:])
	switch family {
	case excavation.ToolPickaxe, excavation.ToolShovel, excavation.ToolAxe:
		return tier, family, true
	}
	return excavation.TierNone, excavation.ToolNone, false
}
