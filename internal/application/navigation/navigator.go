package navigation

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

// ErrNavigatorBusy is returned when GoTo is called while another goal is active
var ErrNavigatorBusy = errors.New("navigator is already driving a goal")

const lookAheadCells = 3

// Classifier resolves liquid hazards for a single cell
type Classifier interface {
	Classify(ctx context.Context, pos shared.Coordinate) domainHazard.Classification
}

// GoalRecorder persists finished goals for diagnostics
type GoalRecorder interface {
	RecordGoal(ctx context.Context, agent string, record navigation.GoalRecord) error
}

// Config tunes the reactive controller
type Config struct {
	Agent         string
	StepInterval  time.Duration
	BurstDuration time.Duration
	JumpPulse     time.Duration
	// ClimbThreshold is how far above the agent a target must be to trigger a jump
	ClimbThreshold float64
}

// DefaultConfig returns the step timings used when none are configured
func DefaultConfig() Config {
	return Config{
		StepInterval:   50 * time.Millisecond,
		BurstDuration:  250 * time.Millisecond,
		JumpPulse:      100 * time.Millisecond,
		ClimbThreshold: 1.0,
	}
}

// Navigator drives the agent toward one goal at a time with bounded
// look-ahead obstacle avoidance and hazard detours. It does not plan paths.
type Navigator struct {
	world      world.Client
	classifier Classifier
	clock      shared.Clock
	cfg        Config
	recorder   GoalRecorder

	mu         sync.Mutex
	navigating bool
	cancel     context.CancelFunc
	history    []navigation.GoalRecord
}

// NewNavigator creates a navigator. If clock is nil, uses RealClock.
func NewNavigator(client world.Client, classifier Classifier, clock shared.Clock, cfg Config) *Navigator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	def := DefaultConfig()
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = def.StepInterval
	}
	if cfg.BurstDuration <= 0 {
		cfg.BurstDuration = def.BurstDuration
	}
	if cfg.JumpPulse <= 0 {
		cfg.JumpPulse = def.JumpPulse
	}
	if cfg.ClimbThreshold <= 0 {
		cfg.ClimbThreshold = def.ClimbThreshold
	}
	return &Navigator{
		world:      client,
		classifier: classifier,
		clock:      clock,
		cfg:        cfg,
	}
}

// SetRecorder attaches a goal recorder
func (n *Navigator) SetRecorder(r GoalRecorder) {
	n.recorder = r
}

// IsNavigating reports whether a goal is in progress
func (n *Navigator) IsNavigating() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigating
}

// History returns a copy of the goal history
func (n *Navigator) History() []navigation.GoalRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]navigation.GoalRecord, len(n.history))
	copy(out, n.history)
	return out
}

// Stop clears movement intents and ends the active goal, if any. Safe to call
// from any goroutine at any time.
func (n *Navigator) Stop() {
	n.mu.Lock()
	cancel := n.cancel
	n.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	_ = world.ReleaseAll(context.Background(), n.world)
}

// GoTo drives the agent toward target until it is within tolerance, the
// timeout elapses, or the goal is stopped. Not reaching the target is a normal
// outcome reported as false; the error is reserved for a busy navigator.
func (n *Navigator) GoTo(ctx context.Context, target shared.Coordinate, opts navigation.Options) (bool, error) {
	opts = opts.WithDefaults()

	n.mu.Lock()
	if n.navigating {
		n.mu.Unlock()
		return false, ErrNavigatorBusy
	}
	goalCtx, cancel := context.WithCancel(ctx)
	n.navigating = true
	n.cancel = cancel
	n.mu.Unlock()

	defer func() {
		cancel()
		n.mu.Lock()
		n.navigating = false
		n.cancel = nil
		n.mu.Unlock()
	}()

	goalCtx, span := common.Tracer().Start(goalCtx, "navigation.goto")
	defer span.End()
	span.SetAttributes(attribute.String("target", target.String()))

	goal := navigation.Goal{Target: target, IssuedAt: n.clock.Now(), Options: opts}
	run := &goalRun{nav: n, goal: goal, dest: standPoint(target)}
	outcome := run.drive(goalCtx)

	if outcome != navigation.OutcomeReached || run.moved {
		// released on a fresh context: the goal context may already be cancelled
		_ = world.ReleaseAll(context.WithoutCancel(ctx), n.world)
	}

	record := navigation.GoalRecord{
		Goal:       goal,
		Outcome:    outcome,
		FinishedAt: n.clock.Now(),
		Iterations: run.iterations,
		Detours:    run.detours,
	}
	n.finish(ctx, record)
	span.SetAttributes(attribute.String("outcome", string(outcome)))

	return outcome == navigation.OutcomeReached, nil
}

func (n *Navigator) finish(ctx context.Context, record navigation.GoalRecord) {
	n.mu.Lock()
	n.history = append(n.history, record)
	n.mu.Unlock()

	metrics.RecordGoal(n.cfg.Agent, string(record.Outcome), record.Duration().Seconds(), record.Detours)

	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelDebug, "Navigation goal finished", map[string]interface{}{
		"action":     "navigate",
		"target":     record.Goal.Target.String(),
		"outcome":    string(record.Outcome),
		"iterations": record.Iterations,
		"detours":    record.Detours,
	})

	if n.recorder != nil {
		if err := n.recorder.RecordGoal(context.WithoutCancel(ctx), n.cfg.Agent, record); err != nil {
			logger.Log(common.LevelWarning, "Failed to record navigation goal", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// goalRun holds the per-call state of one goal
type goalRun struct {
	nav        *Navigator
	goal       navigation.Goal
	dest       mgl64.Vec3
	moved      bool
	iterations int
	detours    int
}

func (r *goalRun) drive(ctx context.Context) navigation.Outcome {
	n := r.nav
	opts := r.goal.Options
	deadline := r.goal.IssuedAt.Add(opts.Timeout)

	for n.clock.Now().Before(deadline) {
		if ctx.Err() != nil {
			return navigation.OutcomeCancelled
		}
		r.iterations++

		pos, err := n.world.AgentPosition(ctx)
		if err == nil {
			if pos.Sub(r.dest).Len() < opts.Tolerance {
				return navigation.OutcomeReached
			}
			r.step(ctx, pos)
		}

		if err := shared.SleepContext(ctx, n.clock, n.cfg.StepInterval); err != nil {
			return navigation.OutcomeCancelled
		}
	}
	return navigation.OutcomeTimedOut
}

// step performs one iteration: obstacle avoidance, then hazard avoidance,
// otherwise steering toward the destination
func (r *goalRun) step(ctx context.Context, pos mgl64.Vec3) {
	opts := r.goal.Options

	if opts.CheckObstacles && r.avoidObstacle(ctx, pos) {
		r.detours++
		return
	}
	if opts.AvoidLava && r.avoidHazard(ctx, pos, isLavaHazard) {
		r.detours++
		return
	}
	if opts.AvoidWater && r.avoidHazard(ctx, pos, isWaterHazard) {
		r.detours++
		return
	}
	r.steer(ctx, pos)
}

func (r *goalRun) avoidObstacle(ctx context.Context, pos mgl64.Vec3) bool {
	n := r.nav
	heading := r.heading(ctx, pos)
	if heading.Len() == 0 {
		return false
	}

	feet := shared.FromPoint(pos)
	remaining := r.dest.Sub(pos).Len()
	blocked := false
	for i := 1; i <= lookAheadCells; i++ {
		if float64(i) > remaining {
			break
		}
		ahead := pos.Add(heading.Mul(float64(i)))
		cell := shared.Coordinate{X: int(math.Floor(ahead.X())), Y: feet.Y, Z: int(math.Floor(ahead.Z()))}
		if cell == feet || r.insideGoal(cell) {
			continue
		}
		if n.isSolid(ctx, cell) {
			blocked = true
			break
		}
	}
	if !blocked {
		return false
	}

	axis := snapToAxis(heading)
	for _, c := range avoidanceCandidates(axis) {
		if !n.canStand(ctx, feet.Offset(c.dx, 0, c.dz)) {
			continue
		}
		_ = n.world.Face(ctx, yawOf(float64(axis.dx), float64(axis.dz)), 0)
		r.burst(ctx, c.dir)
		return true
	}
	return false
}

// insideGoal reports whether c is the target or lies within the arrival
// tolerance of it. The target of an excavation goal is itself solid.
func (r *goalRun) insideGoal(c shared.Coordinate) bool {
	if c == r.goal.Target {
		return true
	}
	return standPoint(c).Sub(r.dest).Len() < r.goal.Options.Tolerance
}

func (r *goalRun) avoidHazard(ctx context.Context, pos mgl64.Vec3, matches func(domainHazard.Classification) bool) bool {
	n := r.nav
	if n.classifier == nil {
		return false
	}
	feet := shared.FromPoint(pos)

	found := false
	for dx := -1; dx <= 1 && !found; dx++ {
		for dy := -1; dy <= 2 && !found; dy++ {
			for dz := -1; dz <= 1 && !found; dz++ {
				found = matches(n.classifier.Classify(ctx, feet.Offset(dx, dy, dz)))
			}
		}
	}
	if !found {
		return false
	}

	for _, off := range horizontalNeighbours {
		cell := feet.Offset(off.dx, 0, off.dz)
		if matches(n.classifier.Classify(ctx, cell)) {
			continue
		}
		_ = n.world.Face(ctx, yawOf(float64(off.dx), float64(off.dz)), 0)
		r.burst(ctx, world.DirectionForward)
		return true
	}
	return false
}

func (r *goalRun) steer(ctx context.Context, pos mgl64.Vec3) {
	n := r.nav
	delta := r.dest.Sub(pos)
	if err := n.world.Face(ctx, yawOf(delta.X(), delta.Z()), 0); err != nil {
		return
	}
	if err := n.world.SetMovementIntent(ctx, world.DirectionForward, true); err != nil {
		return
	}
	r.moved = true

	// Descending is left to gravity; only climbing needs help.
	if delta.Y() > n.cfg.ClimbThreshold {
		_ = n.world.SetMovementIntent(ctx, world.DirectionJump, true)
		_ = shared.SleepContext(ctx, n.clock, n.cfg.JumpPulse)
		_ = n.world.SetMovementIntent(context.WithoutCancel(ctx), world.DirectionJump, false)
	}
}

// burst issues a short directional movement and then releases every intent
func (r *goalRun) burst(ctx context.Context, dir world.Direction) {
	n := r.nav
	r.moved = true
	_ = world.ReleaseAll(ctx, n.world)
	if err := n.world.SetMovementIntent(ctx, dir, true); err != nil {
		return
	}
	_ = shared.SleepContext(ctx, n.clock, n.cfg.BurstDuration)
	_ = world.ReleaseAll(context.WithoutCancel(ctx), n.world)
}

// heading is the horizontal movement direction: the agent's velocity when it
// is moving, otherwise the bearing to the destination
func (r *goalRun) heading(ctx context.Context, pos mgl64.Vec3) mgl64.Vec3 {
	if v, err := r.nav.world.AgentVelocity(ctx); err == nil {
		h := mgl64.Vec3{v.X(), 0, v.Z()}
		if h.Len() > 1e-3 {
			return h.Normalize()
		}
	}
	delta := r.dest.Sub(pos)
	h := mgl64.Vec3{delta.X(), 0, delta.Z()}
	if h.Len() < 1e-3 {
		return mgl64.Vec3{}
	}
	return h.Normalize()
}

func (n *Navigator) isSolid(ctx context.Context, c shared.Coordinate) bool {
	block, found, err := n.world.GetBlock(ctx, c)
	return err == nil && found && world.IsSolid(block.Material)
}

// canStand reports whether the agent fits at c (feet and head clear) with a
// solid cell below to stand on
func (n *Navigator) canStand(ctx context.Context, c shared.Coordinate) bool {
	if n.isSolid(ctx, c) || n.isSolid(ctx, c.Up()) {
		return false
	}
	return n.isSolid(ctx, c.Down())
}

func isLavaHazard(c domainHazard.Classification) bool  { return c.HazardLiquid }
func isWaterHazard(c domainHazard.Classification) bool { return c.WaterLiquid }

// standPoint is where the agent's feet rest when occupying cell c
func standPoint(c shared.Coordinate) mgl64.Vec3 {
	return mgl64.Vec3{float64(c.X) + 0.5, float64(c.Y), float64(c.Z) + 0.5}
}

// yawOf returns the yaw facing (dx, dz), measured from +Z toward +X
func yawOf(dx, dz float64) float64 {
	return math.Atan2(dx, dz)
}
