package hazard

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Classification is the liquid hazard lookup for a single cell
type Classification struct {
	HazardLiquid bool
	WaterLiquid  bool
}

// HostileEntity is a hostile entity seen during an assessment
type HostileEntity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
	Distance float64    `json:"distance"`
}

// Report is the outcome of one volume scan. Reports are never cached; the
// environment is live and may change between calls.
type Report struct {
	Center   shared.Coordinate   `json:"center"`
	Radius   int                 `json:"radius"`
	Lava     []shared.Coordinate `json:"lava"`
	Water    []shared.Coordinate `json:"water"`
	Hostiles []HostileEntity     `json:"hostiles"`
	IsSafe   bool                `json:"is_safe"`
}

// Evaluate sets IsSafe from the collected hazards. Water alone is not unsafe.
func (r *Report) Evaluate() {
	r.IsSafe = len(r.Lava) == 0 && len(r.Hostiles) == 0
}

// PrimaryHazard returns the position mitigation should move away from:
// the first lava cell, otherwise the nearest hostile.
func (r *Report) PrimaryHazard() (shared.Coordinate, bool) {
	if len(r.Lava) > 0 {
		return r.Lava[0], true
	}
	if len(r.Hostiles) == 0 {
		return shared.Coordinate{}, false
	}
	nearest := r.Hostiles[0]
	for _, h := range r.Hostiles[1:] {
		if h.Distance < nearest.Distance {
			nearest = h
		}
	}
	return shared.FromPoint(nearest.Position), true
}
