package hazard

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

// Mover relocates the agent. The Navigator satisfies it.
type Mover interface {
	GoTo(ctx context.Context, target shared.Coordinate, opts navigation.Options) (bool, error)
}

// Config holds the escape vector used by Mitigate
type Config struct {
	EscapeUp         int
	EscapeHorizontal int
	EscapeTimeout    time.Duration
}

// DefaultConfig returns the escape settings used when none are configured
func DefaultConfig() Config {
	return Config{
		EscapeUp:         2,
		EscapeHorizontal: 3,
		EscapeTimeout:    5 * time.Second,
	}
}

// Assessor inspects the live world for hazardous liquids and hostile entities.
// It keeps no state between calls.
type Assessor struct {
	world world.Client
	mover Mover
	cfg   Config
}

// NewAssessor creates an assessor. mover may be set later with SetMover when
// the navigator itself depends on the assessor.
func NewAssessor(client world.Client, mover Mover, cfg Config) *Assessor {
	def := DefaultConfig()
	if cfg.EscapeUp == 0 {
		cfg.EscapeUp = def.EscapeUp
	}
	if cfg.EscapeHorizontal == 0 {
		cfg.EscapeHorizontal = def.EscapeHorizontal
	}
	if cfg.EscapeTimeout <= 0 {
		cfg.EscapeTimeout = def.EscapeTimeout
	}
	return &Assessor{world: client, mover: mover, cfg: cfg}
}

// SetMover wires the component used for emergency relocation
func (a *Assessor) SetMover(m Mover) {
	a.mover = m
}

// Classify looks up a single cell. Unresolvable cells are reported as
// non-hazardous so missing data never stalls the caller.
func (a *Assessor) Classify(ctx context.Context, pos shared.Coordinate) domainHazard.Classification {
	block, found, err := a.world.GetBlock(ctx, pos)
	if err != nil || !found {
		return domainHazard.Classification{}
	}
	return domainHazard.Classification{
		HazardLiquid: world.IsLava(block.Material),
		WaterLiquid:  world.IsWater(block.Material),
	}
}

// ScanVolume visits every cell of the cube of side 2*radius+1 around center
// and collects hostile entities inside the same bounds. Cost is cubic in
// radius; keep it small.
func (a *Assessor) ScanVolume(ctx context.Context, center shared.Coordinate, radius int) (domainHazard.Report, error) {
	ctx, span := common.Tracer().Start(ctx, "hazard.scan_volume")
	defer span.End()
	span.SetAttributes(attribute.String("center", center.String()), attribute.Int("radius", radius))

	if radius < 0 {
		return domainHazard.Report{}, shared.NewValidationError("radius", "must be non-negative")
	}

	report := domainHazard.Report{Center: center, Radius: radius}
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				pos := center.Offset(dx, dy, dz)
				cls := a.Classify(ctx, pos)
				if cls.HazardLiquid {
					report.Lava = append(report.Lava, pos)
				}
				if cls.WaterLiquid {
					report.Water = append(report.Water, pos)
				}
			}
		}
	}

	entities, err := a.world.NearbyEntities(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to query entities: %w", err)
	}
	min := center.Offset(-radius, -radius, -radius)
	max := center.Offset(radius, radius, radius)
	origin := center.Center()
	for _, e := range entities {
		if !e.IsLiving() || !domainHazard.IsHostileKind(e.Name) {
			continue
		}
		if !shared.FromPoint(e.Position).WithinBox(min, max) {
			continue
		}
		report.Hostiles = append(report.Hostiles, domainHazard.HostileEntity{
			ID:       e.ID,
			Name:     e.Name,
			Position: e.Position,
			Distance: e.Position.Sub(origin).Len(),
		})
	}

	report.Evaluate()
	metrics.RecordScan(report.IsSafe, len(report.Lava), len(report.Hostiles))
	span.SetAttributes(attribute.Bool("safe", report.IsSafe))
	return report, nil
}

// DetectHostiles partitions every known living entity. ThreatLevel is high if
// any hostile exists at all; distances are measured from the agent.
func (a *Assessor) DetectHostiles(ctx context.Context, maxDistance float64) (domainHazard.ThreatAssessment, error) {
	assessment := domainHazard.ThreatAssessment{
		ThreatLevel: domainHazard.ThreatNone,
		MaxDistance: maxDistance,
	}

	agent, err := a.world.AgentPosition(ctx)
	if err != nil {
		return assessment, fmt.Errorf("failed to read agent position: %w", err)
	}
	entities, err := a.world.NearbyEntities(ctx)
	if err != nil {
		return assessment, fmt.Errorf("failed to query entities: %w", err)
	}

	for _, e := range entities {
		if !e.IsLiving() {
			continue
		}
		dist := e.Position.Sub(agent).Len()
		if domainHazard.IsHostileKind(e.Name) {
			assessment.Hostiles = append(assessment.Hostiles, domainHazard.HostileEntity{
				ID:       e.ID,
				Name:     e.Name,
				Position: e.Position,
				Distance: dist,
			})
			continue
		}
		assessment.Peaceful = append(assessment.Peaceful, domainHazard.PeacefulEntity{
			ID:       e.ID,
			Name:     e.Name,
			Distance: dist,
		})
	}

	if len(assessment.Hostiles) > 0 {
		assessment.ThreatLevel = domainHazard.ThreatHigh
	}
	return assessment, nil
}

// HasHostiles reports whether any hostile is within maxDistance of the agent
func (a *Assessor) HasHostiles(ctx context.Context, maxDistance float64) (bool, error) {
	assessment, err := a.DetectHostiles(ctx, maxDistance)
	if err != nil {
		return false, err
	}
	return len(assessment.Nearby()) > 0, nil
}

// EscapeTarget computes the relocation point for a hazard: up and diagonally
// away from it on both horizontal axes.
func (a *Assessor) EscapeTarget(agent, hazardPos shared.Coordinate) shared.Coordinate {
	sx := 1
	if agent.X < hazardPos.X {
		sx = -1
	}
	sz := 1
	if agent.Z < hazardPos.Z {
		sz = -1
	}
	return hazardPos.Offset(sx*a.cfg.EscapeHorizontal, a.cfg.EscapeUp, sz*a.cfg.EscapeHorizontal)
}

// Mitigate attempts an emergency relocation away from hazardPos. The result
// is advisory: reaching the escape point does not guarantee safe ground.
// Any failure yields false; nothing is returned past this boundary.
func (a *Assessor) Mitigate(ctx context.Context, hazardPos shared.Coordinate) bool {
	logger := common.LoggerFromContext(ctx)

	ok := a.mitigate(ctx, hazardPos)
	metrics.RecordMitigation(ok)

	level := common.LevelInfo
	if !ok {
		level = common.LevelWarning
	}
	logger.Log(level, "Hazard mitigation finished", map[string]interface{}{
		"action":  "mitigate",
		"hazard":  hazardPos.String(),
		"success": ok,
	})
	return ok
}

func (a *Assessor) mitigate(ctx context.Context, hazardPos shared.Coordinate) bool {
	if a.mover == nil {
		return false
	}
	pos, err := a.world.AgentPosition(ctx)
	if err != nil {
		return false
	}
	target := a.EscapeTarget(shared.FromPoint(pos), hazardPos)

	reached, err := a.mover.GoTo(ctx, target, navigation.Options{
		Timeout:        a.cfg.EscapeTimeout,
		CheckObstacles: true,
		AvoidLava:      true,
	})
	if err != nil {
		return false
	}
	return reached
}
