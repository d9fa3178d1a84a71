package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/adapters/persistence"
	"github.com/andrescamacho/excavator-go/internal/adapters/world/sim"
	appExcavation "github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/application/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
	"github.com/andrescamacho/excavator-go/test/helpers"
)

const (
	coordPattern = `(-?\d+),(-?\d+),(-?\d+)`
	pointPattern = `(-?[\d.]+),(-?[\d.]+),(-?[\d.]+)`
)

// standingMover never moves the agent and reports every target as reached.
// The scenarios keep all cells within reach of the starting position.
type standingMover struct{}

func (standingMover) GoTo(ctx context.Context, _ shared.Coordinate, _ navigation.Options) (bool, error) {
	return ctx.Err() == nil, nil
}

func (standingMover) Stop() {}

// excavationContext holds state for excavation and hazard scenarios
type excavationContext struct {
	world    *sim.World
	assessor *hazard.Assessor
	ctrl     *appExcavation.Controller
	runs     *persistence.GormRunRepository
	reporter *helpers.RecordingReporter

	handle  *appExcavation.Handle
	summary appExcavation.Summary
	err     error
	report  domainHazard.Report

	release     chan struct{}
	released    bool
	entityCount int
}

func (ec *excavationContext) releaseRemovals() {
	if ec.release != nil && !ec.released {
		close(ec.release)
		ec.released = true
	}
}

func (ec *excavationContext) reset() error {
	ec.releaseRemovals()
	if ec.ctrl != nil {
		ec.ctrl.Stop()
	}
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	*ec = excavationContext{}
	return nil
}

// ============================================================================
// Setup Steps
// ============================================================================

func (ec *excavationContext) aSimulatedWorldWithTheAgentStandingAt(x, y, z float64) error {
	w := sim.New(nil)
	pos := mgl64.Vec3{x, y, z}
	feet := shared.FromPoint(pos)
	w.Fill(feet.Offset(-1, -1, -1), feet.Offset(1, -1, 1), "stone")
	w.SetInventory("stone_pickaxe", "wooden_shovel")
	w.Teleport(pos)

	ec.world = w
	ec.assessor = hazard.NewAssessor(w, nil, hazard.DefaultConfig())
	ec.runs = persistence.NewGormRunRepository(helpers.SharedTestDB)
	ec.reporter = &helpers.RecordingReporter{}
	ec.ctrl = appExcavation.NewController(w, ec.assessor, standingMover{}, appExcavation.Config{
		Agent: "digger",
		Pacer: &helpers.InstantPacer{},
		Reporters: []appExcavation.ProgressReporter{
			ec.reporter,
			appExcavation.NewRunRecordReporter(ec.runs),
		},
	})
	return nil
}

func (ec *excavationContext) theBoxIsFilledWith(x1, y1, z1, x2, y2, z2 int, material string) error {
	ec.world.Fill(shared.NewCoordinate(x1, y1, z1), shared.NewCoordinate(x2, y2, z2), material)
	return nil
}

func (ec *excavationContext) theCellContains(x, y, z int, material string) error {
	ec.world.SetBlock(shared.NewCoordinate(x, y, z), material)
	return nil
}

func (ec *excavationContext) anEntityStandsAt(name string, x, y, z float64) error {
	ec.entityCount++
	ec.world.SetEntities(append(ec.currentEntities(), world.Entity{
		ID:       fmt.Sprintf("entity-%d", ec.entityCount),
		Name:     name,
		Kind:     world.EntityKindMob,
		Position: mgl64.Vec3{x, y, z},
	})...)
	return nil
}

func (ec *excavationContext) currentEntities() []world.Entity {
	entities, _ := ec.world.NearbyEntities(context.Background())
	return entities
}

func (ec *excavationContext) removalsAreHeld() error {
	ec.release = make(chan struct{})
	release := ec.release
	ec.world.SetBreakHook(func(ctx context.Context, _ shared.Coordinate) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return nil
}

// ============================================================================
// Action Steps
// ============================================================================

func (ec *excavationContext) theAgentExcavates(x1, y1, z1, x2, y2, z2 int) error {
	handle, err := ec.ctrl.Start(context.Background(),
		shared.NewCoordinate(x1, y1, z1), shared.NewCoordinate(x2, y2, z2), appExcavation.Options{})
	if err != nil {
		return fmt.Errorf("start failed: %w", err)
	}
	ec.handle = handle
	return nil
}

func (ec *excavationContext) theAgentRequestsAnotherExcavation(x1, y1, z1, x2, y2, z2 int) error {
	_, ec.err = ec.ctrl.Start(context.Background(),
		shared.NewCoordinate(x1, y1, z1), shared.NewCoordinate(x2, y2, z2), appExcavation.Options{})
	return nil
}

func (ec *excavationContext) theAgentStopsTheExcavation() error {
	ec.ctrl.Stop()
	return nil
}

func (ec *excavationContext) removalsAreReleased() error {
	if ec.release == nil {
		return fmt.Errorf("removals were not held")
	}
	ec.releaseRemovals()
	return nil
}

func (ec *excavationContext) theAgentScansAround(x, y, z, radius int) error {
	report, err := ec.assessor.ScanVolume(context.Background(), shared.NewCoordinate(x, y, z), radius)
	if err != nil {
		return err
	}
	ec.report = report
	return nil
}

// ============================================================================
// Assertion Steps
// ============================================================================

func (ec *excavationContext) theExcavationFinishesAs(state string) error {
	if ec.handle == nil {
		return fmt.Errorf("no excavation was started")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	summary, err := ec.handle.Wait(ctx)
	if err != nil {
		return fmt.Errorf("excavation did not finish: %w", err)
	}
	ec.summary = summary
	if string(summary.State) != state {
		return fmt.Errorf("expected final state %s, got %s", state, summary.State)
	}
	return nil
}

func (ec *excavationContext) cellsWereMinedAndSkipped(mined, skipped int) error {
	if ec.summary.Mined != mined || ec.summary.Skipped != skipped {
		return fmt.Errorf("expected %d mined and %d skipped, got %d mined and %d skipped",
			mined, skipped, ec.summary.Mined, ec.summary.Skipped)
	}
	return nil
}

func (ec *excavationContext) theBoxIsEmpty(x1, y1, z1, x2, y2, z2 int) error {
	min, max := shared.NormalizeBox(shared.NewCoordinate(x1, y1, z1), shared.NewCoordinate(x2, y2, z2))
	for _, c := range excavation.EnumerateBox(min, max) {
		if m := ec.world.Block(c); !world.IsEmpty(m) {
			return fmt.Errorf("cell %s still contains %s", c, m)
		}
	}
	return nil
}

func (ec *excavationContext) theCellStillContains(x, y, z int, material string) error {
	c := shared.NewCoordinate(x, y, z)
	if got := ec.world.Block(c); got != material {
		return fmt.Errorf("expected %s at %s, got %q", material, c, got)
	}
	return nil
}

func (ec *excavationContext) theStoredRunRecordHasStateWithMined(state string, mined int) error {
	run, err := ec.runs.FindRun(context.Background(), ec.handle.OperationID)
	if err != nil {
		return err
	}
	if string(run.State) != state || run.Mined != mined {
		return fmt.Errorf("expected stored run %s with %d mined, got %s with %d", state, mined, run.State, run.Mined)
	}
	if run.FinishedAt == nil {
		return fmt.Errorf("stored run has no finish time")
	}
	return nil
}

func (ec *excavationContext) theRequestIsRejectedAsBusy() error {
	if !errors.Is(ec.err, shared.ErrBusy) {
		return fmt.Errorf("expected busy error, got %v", ec.err)
	}
	return nil
}

func (ec *excavationContext) theControllerIs(state string) error {
	if got := ec.ctrl.Status().State; string(got) != state {
		return fmt.Errorf("expected controller %s, got %s", state, got)
	}
	return nil
}

func (ec *excavationContext) atMostCellsWereRemoved(n int) error {
	if got := len(ec.world.Breaks()); got > n {
		return fmt.Errorf("expected at most %d removals, got %d", n, got)
	}
	return nil
}

func (ec *excavationContext) theScanIsUnsafeWith(lava, hostiles int) error {
	if ec.report.IsSafe {
		return fmt.Errorf("expected unsafe report")
	}
	if len(ec.report.Lava) != lava || len(ec.report.Hostiles) != hostiles {
		return fmt.Errorf("expected %d lava and %d hostiles, got %d and %d",
			lava, hostiles, len(ec.report.Lava), len(ec.report.Hostiles))
	}
	return nil
}

// InitializeExcavationScenario registers the excavation and hazard steps
func InitializeExcavationScenario(sc *godog.ScenarioContext) {
	ec := &excavationContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, ec.reset()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		return ctx, ec.reset()
	})

	// Setup steps
	sc.Step(`^a simulated world with the agent standing at `+pointPattern+`$`, ec.aSimulatedWorldWithTheAgentStandingAt)
	sc.Step(`^the box from `+coordPattern+` to `+coordPattern+` is filled with "([^"]*)"$`, ec.theBoxIsFilledWith)
	sc.Step(`^the cell `+coordPattern+` contains "([^"]*)"$`, ec.theCellContains)
	sc.Step(`^a "([^"]*)" stands at `+pointPattern+`$`, ec.anEntityStandsAt)
	sc.Step(`^removals are held$`, ec.removalsAreHeld)

	// Action steps
	sc.Step(`^the agent excavates from `+coordPattern+` to `+coordPattern+`$`, ec.theAgentExcavates)
	sc.Step(`^the agent requests another excavation from `+coordPattern+` to `+coordPattern+`$`, ec.theAgentRequestsAnotherExcavation)
	sc.Step(`^the agent stops the excavation$`, ec.theAgentStopsTheExcavation)
	sc.Step(`^removals are released$`, ec.removalsAreReleased)
	sc.Step(`^the agent scans around `+coordPattern+` with radius (\d+)$`, ec.theAgentScansAround)

	// Assertion steps
	sc.Step(`^the excavation finishes as "([^"]*)"$`, ec.theExcavationFinishesAs)
	sc.Step(`^(\d+) cells were mined and (\d+) skipped$`, ec.cellsWereMinedAndSkipped)
	sc.Step(`^the box from `+coordPattern+` to `+coordPattern+` is empty$`, ec.theBoxIsEmpty)
	sc.Step(`^the cell `+coordPattern+` still contains "([^"]*)"$`, ec.theCellStillContains)
	sc.Step(`^the stored run record has state "([^"]*)" with (\d+) mined$`, ec.theStoredRunRecordHasStateWithMined)
	sc.Step(`^the request is rejected as busy$`, ec.theRequestIsRejectedAsBusy)
	sc.Step(`^the controller is "([^"]*)"$`, ec.theControllerIs)
	sc.Step(`^at most (\d+) cells were removed$`, ec.atMostCellsWereRemoved)
	sc.Step(`^the scan is unsafe with (\d+) lava cells and (\d+) hostiles$`, ec.theScanIsUnsafeWith)
}
