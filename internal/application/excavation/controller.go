package excavation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
	"github.com/andrescamacho/excavator-go/pkg/utils"
)

// Skip reasons recorded for cells that were not removed
const (
	SkipCleared     = "cleared"
	SkipIgnored     = "ignored"
	SkipLookup      = "lookup_failed"
	SkipHazard      = "hazard"
	SkipUnreachable = "unreachable"
	SkipRemoval     = "removal_failed"
)

// HazardChecker approves the surroundings of a cell. The hazard Assessor
// satisfies it.
type HazardChecker interface {
	ScanVolume(ctx context.Context, center shared.Coordinate, radius int) (domainHazard.Report, error)
	Mitigate(ctx context.Context, hazardPos shared.Coordinate) bool
}

// Mover brings the agent within reach of a cell. The Navigator satisfies it.
type Mover interface {
	GoTo(ctx context.Context, target shared.Coordinate, opts navigation.Options) (bool, error)
	Stop()
}

// Config wires a Controller
type Config struct {
	Agent     string
	Policy    *excavation.MaterialPolicy
	Clock     shared.Clock
	Pacer     Pacer
	Reporters []ProgressReporter
	Defaults  Options
}

// Controller runs at most one excavation at a time for a single agent.
// All methods are safe for concurrent use; Stop may be called from any
// goroutine.
type Controller struct {
	world     world.Client
	hazards   HazardChecker
	mover     Mover
	policy    *excavation.MaterialPolicy
	tools     *ToolSelector
	pacer     Pacer
	clock     shared.Clock
	reporters []ProgressReporter
	defaults  Options
	agent     string

	mu         sync.Mutex
	machine    *excavation.StateMachine
	queue      *excavation.MiningQueue
	throughput float64
	changed    chan struct{}
	cancel     context.CancelFunc
	run        *runState
}

// runState is the bookkeeping of the active or most recent run
type runState struct {
	handle    *Handle
	opts      Options
	min, max  shared.Coordinate
	total     int
	processed int
	mined     int
	skipped   int
	startedAt time.Time
	cancel    context.CancelFunc
}

// NewController creates an idle controller
func NewController(client world.Client, hazards HazardChecker, mover Mover, cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = shared.NewRealClock()
	}
	if cfg.Policy == nil {
		cfg.Policy = excavation.DefaultMaterialPolicy()
	}
	cfg.Defaults = cfg.Defaults.merge(DefaultOptions())
	if cfg.Pacer == nil {
		cfg.Pacer = NewRatePacer(cfg.Defaults.Throughput)
	}

	return &Controller{
		world:      client,
		hazards:    hazards,
		mover:      mover,
		policy:     cfg.Policy,
		tools:      NewToolSelector(cfg.Policy),
		pacer:      cfg.Pacer,
		clock:      cfg.Clock,
		reporters:  cfg.Reporters,
		defaults:   cfg.Defaults,
		agent:      cfg.Agent,
		machine:    excavation.NewStateMachine(),
		throughput: cfg.Defaults.Throughput,
		changed:    make(chan struct{}),
	}
}

// Agent returns the agent this controller drives
func (c *Controller) Agent() string {
	return c.agent
}

// Start decomposes the box spanned by min and max into a mining queue and
// begins processing it in the background. The run is detached from ctx's
// cancellation; use Stop to end it. Values carried by ctx, such as the
// operation logger, stay visible to the run.
func (c *Controller) Start(ctx context.Context, min, max shared.Coordinate, opts Options) (*Handle, error) {
	c.mu.Lock()
	throughput := c.throughput
	c.mu.Unlock()

	opts = opts.merge(c.defaults.withThroughput(throughput))
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	min, max = shared.NormalizeBox(min, max)
	if volume := shared.BoxVolume(min, max); volume > opts.MaxVolumeCells {
		return nil, shared.NewValidationError("volume",
			fmt.Sprintf("box of %d cells exceeds limit of %d", volume, opts.MaxVolumeCells))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handle := newHandle(utils.GenerateOperationID("excavate", c.agent))
	run := &runState{handle: handle, opts: opts, min: min, max: max, startedAt: c.clock.Now(), cancel: cancel}

	c.mu.Lock()
	if state := c.machine.State(); state.IsActive() {
		c.mu.Unlock()
		cancel()
		return nil, shared.NewBusyError(string(state))
	}
	if err := c.transitionLocked(excavation.StateDecomposing); err != nil {
		c.mu.Unlock()
		cancel()
		return nil, err
	}
	c.queue = nil
	c.cancel = cancel
	c.run = run
	c.throughput = opts.Throughput
	c.mu.Unlock()

	c.pacer.SetRate(opts.Throughput)
	metrics.SetThroughput(c.agent, opts.Throughput)

	runCtx = common.WithLogger(runCtx, &operationLogger{
		inner:       common.LoggerFromContext(ctx),
		operationID: handle.OperationID,
		agent:       c.agent,
	})
	logger := common.LoggerFromContext(runCtx)
	logger.Log(common.LevelInfo, "Excavation requested", map[string]interface{}{
		"action":     "start",
		"min":        min.String(),
		"max":        max.String(),
		"throughput": opts.Throughput,
	})

	cells, err := c.decompose(runCtx, min, max)

	c.mu.Lock()
	if c.run != run || c.machine.State() == excavation.StateCancelled {
		// Stopped while decomposing. A later Start may already own the
		// controller, so nothing but this run's handle is touched.
		c.mu.Unlock()
		c.finish(runCtx, run, excavation.StateCancelled)
		return handle, nil
	}
	if err != nil {
		if resetErr := c.transitionLocked(excavation.StateIdle); resetErr != nil {
			err = errors.Join(err, resetErr)
		}
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		logger.Log(common.LevelError, "Excavation decomposition failed", map[string]interface{}{
			"action": "decompose",
			"error":  err.Error(),
		})
		return nil, err
	}
	if err := c.transitionLocked(excavation.StateMining); err != nil {
		c.mu.Unlock()
		c.Stop()
		c.finish(runCtx, run, excavation.StateCancelled)
		return nil, err
	}
	c.queue = excavation.NewMiningQueue(cells)
	run.total = len(cells)
	c.mu.Unlock()

	logger.Log(common.LevelInfo, "Excavation queue built", map[string]interface{}{
		"action": "decompose",
		"cells":  len(cells),
	})

	go c.loop(runCtx, run)
	return handle, nil
}

// decompose enumerates, filters and orders the cells of the box. Cells with
// no data are treated as already empty.
func (c *Controller) decompose(ctx context.Context, min, max shared.Coordinate) ([]excavation.CellDescriptor, error) {
	ctx, span := common.Tracer().Start(ctx, "excavation.decompose")
	defer span.End()

	origin, err := c.world.AgentPosition(ctx)
	if err != nil {
		return nil, shared.NewDecompositionError(min, fmt.Errorf("agent position: %w", err))
	}

	coords := excavation.EnumerateBox(min, max)
	cells := make([]excavation.CellDescriptor, 0, len(coords))
	for _, coord := range coords {
		block, found, err := c.world.GetBlock(ctx, coord)
		if err != nil {
			return nil, shared.NewDecompositionError(coord, err)
		}
		if !found {
			continue
		}
		cells = append(cells, excavation.CellDescriptor{Coordinate: coord, Material: block.Material})
	}

	cells = excavation.FilterCells(cells, c.policy)
	excavation.OrderByDistance(cells, origin)
	span.SetAttributes(attribute.Int("candidates", len(coords)), attribute.Int("queued", len(cells)))
	return cells, nil
}

// loop processes the queue until it is exhausted or the run is cancelled
func (c *Controller) loop(ctx context.Context, run *runState) {
	ctx, span := common.Tracer().Start(ctx, "excavation.run")
	span.SetAttributes(
		attribute.String("operation_id", run.handle.OperationID),
		attribute.Int("cells", run.total),
	)
	defer span.End()

	for {
		c.mu.Lock()
		state := c.machine.State()
		if state == excavation.StatePaused {
			changed := c.changed
			c.mu.Unlock()
			select {
			case <-changed:
			case <-ctx.Done():
			}
			continue
		}
		if state != excavation.StateMining {
			c.mu.Unlock()
			c.finish(ctx, run, state)
			return
		}
		cell, ok := c.queue.Current()
		if !ok {
			_ = c.transitionLocked(excavation.StateCompleted)
			c.mu.Unlock()
			c.finish(ctx, run, excavation.StateCompleted)
			return
		}
		c.mu.Unlock()

		result := c.processCell(ctx, run.opts, cell)

		c.mu.Lock()
		if c.machine.State() == excavation.StateCancelled {
			// Stop truncated the queue while the cell was in flight
			c.mu.Unlock()
			continue
		}
		c.queue.Advance()
		run.processed++
		if result.skipReason != "" {
			run.skipped++
		} else if result.mined {
			run.mined++
		}
		var event *ProgressEvent
		if run.processed%run.opts.ProgressEvery == 0 {
			e := c.eventLocked(run, false)
			event = &e
		}
		c.mu.Unlock()

		c.recordCell(ctx, cell, result)
		if event != nil {
			c.report(ctx, *event)
		}
		if result.attempted {
			// An error here means Stop was called; the next iteration sees Cancelled.
			_ = c.pacer.Wait(ctx)
		}
	}
}

// cellResult is the outcome of the per-cell procedure
type cellResult struct {
	mined      bool
	attempted  bool
	skipReason string
	err        error
}

func (c *Controller) processCell(ctx context.Context, opts Options, cell excavation.CellDescriptor) cellResult {
	// 1. Re-resolve the material; the snapshot may be stale
	block, found, err := c.world.GetBlock(ctx, cell.Coordinate)
	if err != nil {
		return cellResult{skipReason: SkipLookup, err: err}
	}
	if !found || world.IsEmpty(block.Material) {
		return cellResult{skipReason: SkipCleared}
	}
	if c.policy.IsIgnored(block.Material) {
		return cellResult{skipReason: SkipIgnored}
	}

	// 2. Approve the surroundings, escaping first if needed
	report, err := c.hazards.ScanVolume(ctx, cell.Coordinate, opts.HazardRadius)
	if err != nil {
		return cellResult{skipReason: SkipHazard, err: err}
	}
	if !report.IsSafe {
		hazardPos, ok := report.PrimaryHazard()
		if !ok || !c.hazards.Mitigate(ctx, hazardPos) {
			return cellResult{skipReason: SkipHazard, err: errors.New("unsafe surroundings and mitigation failed")}
		}
	}

	// 3. Get within reach
	pos, err := c.world.AgentPosition(ctx)
	if err != nil {
		return cellResult{skipReason: SkipUnreachable, err: err}
	}
	if cell.Coordinate.Center().Sub(pos).Len() > opts.Reach {
		reached, err := c.mover.GoTo(ctx, cell.Coordinate, approachOptions(opts))
		if err != nil {
			return cellResult{skipReason: SkipUnreachable, err: err}
		}
		if !reached {
			return cellResult{skipReason: SkipUnreachable, err: errors.New("navigation did not reach the cell")}
		}
	}

	// 4. Equip the best tool held, if any
	c.equipFor(ctx, block.Material)

	// 5. Remove
	if err := c.world.BreakBlock(ctx, cell.Coordinate); err != nil {
		return cellResult{attempted: true, skipReason: SkipRemoval, err: err}
	}
	return cellResult{attempted: true, mined: true}
}

// approachOptions widens the arrival tolerance to the reach. The navigator
// measures from the cell's floor centre, which is half a block below the
// centre used for the reach check.
func approachOptions(opts Options) navigation.Options {
	nav := opts.Navigation
	if t := opts.Reach - 0.5; t > nav.Tolerance {
		nav.Tolerance = t
	}
	return nav
}

func (c *Controller) equipFor(ctx context.Context, material string) {
	inventory, err := c.world.Inventory(ctx)
	if err != nil {
		return
	}
	item, ok := c.tools.Select(material, inventory)
	if !ok {
		return
	}
	if err := c.world.Equip(ctx, item); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Equip failed, continuing without tool", map[string]interface{}{
			"action": "equip",
			"item":   item,
			"error":  err.Error(),
		})
	}
}

func (c *Controller) recordCell(ctx context.Context, cell excavation.CellDescriptor, result cellResult) {
	logger := common.LoggerFromContext(ctx)
	switch {
	case result.mined:
		metrics.RecordCellMined(c.agent)
		logger.Log(common.LevelDebug, "Cell mined", map[string]interface{}{
			"action":   "mine",
			"cell":     cell.Coordinate.String(),
			"material": cell.Material,
		})
	case result.err != nil:
		metrics.RecordCellSkipped(c.agent, result.skipReason)
		cellErr := shared.NewTransientCellError(cell.Coordinate, result.skipReason, result.err)
		logger.Log(common.LevelWarning, "Cell skipped", map[string]interface{}{
			"action": "skip",
			"cell":   cell.Coordinate.String(),
			"reason": result.skipReason,
			"error":  cellErr.Error(),
		})
	default:
		metrics.RecordCellSkipped(c.agent, result.skipReason)
		logger.Log(common.LevelDebug, "Cell skipped", map[string]interface{}{
			"action": "skip",
			"cell":   cell.Coordinate.String(),
			"reason": result.skipReason,
		})
	}
}

// finish publishes the terminal event and releases the handle
func (c *Controller) finish(ctx context.Context, run *runState, state excavation.ControllerState) {
	c.mu.Lock()
	event := c.eventLocked(run, true)
	event.State = state
	if c.run == run {
		c.cancel = nil
	}
	c.mu.Unlock()
	run.cancel()

	ctx = context.WithoutCancel(ctx)
	c.report(ctx, event)
	run.handle.finish(Summary{
		OperationID: run.handle.OperationID,
		State:       state,
		Total:       run.total,
		Mined:       event.Mined,
		Skipped:     event.Skipped,
		StartedAt:   run.startedAt,
		FinishedAt:  event.At,
	})
}

func (c *Controller) eventLocked(run *runState, final bool) ProgressEvent {
	remaining := 0
	if c.run == run {
		remaining = c.queue.Remaining()
	}
	return ProgressEvent{
		OperationID: run.handle.OperationID,
		Agent:       c.agent,
		State:       c.machine.State(),
		Min:         run.min,
		Max:         run.max,
		Total:       run.total,
		Processed:   run.processed,
		Mined:       run.mined,
		Skipped:     run.skipped,
		Remaining:   remaining,
		Throughput:  c.throughput,
		StartedAt:   run.startedAt,
		At:          c.clock.Now(),
		Final:       final,
	}
}

func (c *Controller) report(ctx context.Context, event ProgressEvent) {
	for _, r := range c.reporters {
		r.Report(ctx, event)
	}
}

// Pause freezes the cursor of a mining run. It reports whether the state
// changed; pausing anything but a mining run is a no-op.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.State() != excavation.StateMining {
		return false
	}
	return c.transitionLocked(excavation.StatePaused) == nil
}

// Resume continues a paused run from its frozen cursor. It reports whether
// the state changed; resuming anything but a paused run is a no-op.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.State() != excavation.StatePaused {
		return false
	}
	return c.transitionLocked(excavation.StateMining) == nil
}

// Stop cancels the active run, discarding the remaining queue. It is valid
// from any state and idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	state := c.machine.State()
	if !state.IsActive() {
		c.mu.Unlock()
		return
	}
	c.queue.Truncate()
	_ = c.transitionLocked(excavation.StateCancelled)
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c.mover != nil {
		c.mover.Stop()
	}
}

// SetThroughput changes the pacing rate for subsequent cells. Rates outside
// (0.1, 10] are rejected and leave the current rate unchanged.
func (c *Controller) SetThroughput(blocksPerSecond float64) error {
	if err := ValidateThroughput(blocksPerSecond); err != nil {
		return err
	}
	c.mu.Lock()
	c.throughput = blocksPerSecond
	c.mu.Unlock()

	c.pacer.SetRate(blocksPerSecond)
	metrics.SetThroughput(c.agent, blocksPerSecond)
	return nil
}

// Status returns the current state, remaining queue length and throughput
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		State:          c.machine.State(),
		QueueRemaining: c.queue.Remaining(),
		Throughput:     c.throughput,
	}
	if c.run != nil {
		s.OperationID = c.run.handle.OperationID
		s.Mined = c.run.mined
		s.Skipped = c.run.skipped
	}
	return s
}

// transitionLocked moves the state machine and wakes anything waiting on a
// state change. Callers hold mu.
func (c *Controller) transitionLocked(to excavation.ControllerState) error {
	if err := c.machine.Transition(to); err != nil {
		return err
	}
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

func (o Options) withThroughput(rate float64) Options {
	o.Throughput = rate
	return o
}

// operationLogger stamps every entry with the operation and agent
type operationLogger struct {
	inner       common.OperationLogger
	operationID string
	agent       string
}

func (l *operationLogger) Log(level, message string, metadata map[string]interface{}) {
	enriched := make(map[string]interface{}, len(metadata)+2)
	for k, v := range metadata {
		enriched[k] = v
	}
	enriched["operation_id"] = l.operationID
	if l.agent != "" {
		enriched["agent"] = l.agent
	}
	l.inner.Log(level, message, enriched)
}
