package hazard

// ThreatLevel summarises hostile presence
type ThreatLevel string

const (
	ThreatNone ThreatLevel = "none"
	ThreatHigh ThreatLevel = "high"
)

// PeacefulEntity is a living, non-hostile entity
type PeacefulEntity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// ThreatAssessment partitions known living entities. Lists are not filtered by
// distance; MaxDistance is kept so callers can apply it via Nearby.
type ThreatAssessment struct {
	Hostiles    []HostileEntity  `json:"hostiles"`
	Peaceful    []PeacefulEntity `json:"peaceful"`
	ThreatLevel ThreatLevel      `json:"threat_level"`
	MaxDistance float64          `json:"max_distance"`
}

// Nearby returns hostiles within MaxDistance
func (a ThreatAssessment) Nearby() []HostileEntity {
	out := make([]HostileEntity, 0, len(a.Hostiles))
	for _, h := range a.Hostiles {
		if h.Distance <= a.MaxDistance {
			out = append(out, h)
		}
	}
	return out
}

var hostileKinds = map[string]struct{}{
	"zombie":          {},
	"zombie_villager": {},
	"husk":            {},
	"drowned":         {},
	"skeleton":        {},
	"stray":           {},
	"wither_skeleton": {},
	"creeper":         {},
	"spider":          {},
	"cave_spider":     {},
	"enderman":        {},
	"endermite":       {},
	"silverfish":      {},
	"witch":           {},
	"slime":           {},
	"magma_cube":      {},
	"phantom":         {},
	"blaze":           {},
	"ghast":           {},
	"guardian":        {},
	"elder_guardian":  {},
	"pillager":        {},
	"vindicator":      {},
	"evoker":          {},
	"ravager":         {},
	"hoglin":          {},
	"zoglin":          {},
	"piglin_brute":    {},
	"warden":          {},
	"shulker":         {},
	"vex":             {},
	"breeze":          {},
	"bogged":          {},
}

// IsHostileKind reports whether an entity name is in the fixed hostile set
func IsHostileKind(name string) bool {
	_, ok := hostileKinds[name]
	return ok
}
