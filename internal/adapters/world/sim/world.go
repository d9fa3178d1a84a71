// Package sim is an in-memory world used by the CLI's --sim mode and by tests.
// Movement is integrated lazily against the injected clock: every call that
// observes or changes the agent first moves it along its held intents for the
// time elapsed since the previous call.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

const (
	// DefaultSpeed is the walking speed in blocks per second
	DefaultSpeed = 4.3

	// maxSubstep bounds the distance integrated before each collision check
	maxSubstep = 0.25
)

// IntentEvent records one SetMovementIntent call
type IntentEvent struct {
	Direction world.Direction
	Active    bool
}

// BreakHook runs inside BreakBlock before the block is removed. A non-nil
// error fails the break and leaves the block in place.
type BreakHook func(ctx context.Context, c shared.Coordinate) error

type scheduledChange struct {
	material   string
	afterReads int
}

// World is a thread-safe simulated block grid with one agent
type World struct {
	mu sync.Mutex

	blocks    map[shared.Coordinate]string
	reads     map[shared.Coordinate]int
	scheduled map[shared.Coordinate]scheduledChange
	readErrs  map[shared.Coordinate]error
	entities  []world.Entity
	inventory []string

	position mgl64.Vec3
	velocity mgl64.Vec3
	yaw      float64
	pitch    float64
	held     map[world.Direction]bool
	frozen   bool
	clock    shared.Clock
	lastTick time.Time

	// Speed is the walking speed in blocks per second
	Speed     float64
	breakHook BreakHook

	breaks  []shared.Coordinate
	equips  []string
	intents []IntentEvent
	facings []float64
}

// New creates an empty world with the agent at origin. If clock is nil, uses
// RealClock.
func New(clock shared.Clock) *World {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &World{
		blocks:    make(map[shared.Coordinate]string),
		reads:     make(map[shared.Coordinate]int),
		scheduled: make(map[shared.Coordinate]scheduledChange),
		readErrs:  make(map[shared.Coordinate]error),
		held:      make(map[world.Direction]bool),
		clock:     clock,
		lastTick:  clock.Now(),
		Speed:     DefaultSpeed,
	}
}

// SetBlock places material at c
func (w *World) SetBlock(c shared.Coordinate, material string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blocks[c] = material
}

// Fill places material in every cell of the box spanned by a and b
func (w *World) Fill(a, b shared.Coordinate, material string) {
	min, max := shared.NormalizeBox(a, b)
	w.mu.Lock()
	defer w.mu.Unlock()
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				w.blocks[shared.Coordinate{X: x, Y: y, Z: z}] = material
			}
		}
	}
}

// Block returns the material at c, or "" when the cell is unknown
func (w *World) Block(c shared.Coordinate) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blocks[c]
}

// ScheduleChange switches the material at c once the cell has been read
// afterReads times
func (w *World) ScheduleChange(c shared.Coordinate, material string, afterReads int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduled[c] = scheduledChange{material: material, afterReads: afterReads}
}

// FailReads makes GetBlock at c return err
func (w *World) FailReads(c shared.Coordinate, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readErrs[c] = err
}

// SetEntities replaces the known entity list
func (w *World) SetEntities(entities ...world.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities = append([]world.Entity(nil), entities...)
}

// SetInventory replaces the held items
func (w *World) SetInventory(items ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inventory = append([]string(nil), items...)
}

// Teleport moves the agent without simulating movement
func (w *World) Teleport(p mgl64.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = p
	w.velocity = mgl64.Vec3{}
	w.lastTick = w.clock.Now()
}

// Freeze stops the agent from moving regardless of intents
func (w *World) Freeze(frozen bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	w.frozen = frozen
}

// SetBreakHook installs a hook run on every BreakBlock call
func (w *World) SetBreakHook(h BreakHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.breakHook = h
}

// Breaks returns every cell successfully broken, in order
func (w *World) Breaks() []shared.Coordinate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]shared.Coordinate(nil), w.breaks...)
}

// Equips returns every equipped item, in order
func (w *World) Equips() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.equips...)
}

// Intents returns every movement intent change, in order
func (w *World) Intents() []IntentEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]IntentEvent(nil), w.intents...)
}

// Facings returns every yaw passed to Face, in order
func (w *World) Facings() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]float64(nil), w.facings...)
}

// Held reports whether a movement control is currently held
func (w *World) Held(dir world.Direction) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held[dir]
}

// AnyHeld reports whether any movement control is held
func (w *World) AnyHeld() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, v := range w.held {
		if v {
			return true
		}
	}
	return false
}

// Position returns the agent position without advancing movement
func (w *World) Position() mgl64.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position
}

func (w *World) GetBlock(ctx context.Context, c shared.Coordinate) (world.Block, bool, error) {
	if err := ctx.Err(); err != nil {
		return world.Block{}, false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err, ok := w.readErrs[c]; ok {
		return world.Block{}, false, err
	}

	w.reads[c]++
	if change, ok := w.scheduled[c]; ok && w.reads[c] > change.afterReads {
		w.blocks[c] = change.material
		delete(w.scheduled, c)
	}

	material, ok := w.blocks[c]
	if !ok {
		return world.Block{}, false, nil
	}
	return world.Block{Material: material}, true, nil
}

func (w *World) NearbyEntities(ctx context.Context) ([]world.Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]world.Entity(nil), w.entities...), nil
}

func (w *World) BreakBlock(ctx context.Context, c shared.Coordinate) error {
	w.mu.Lock()
	hook := w.breakHook
	w.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, c); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	material, ok := w.blocks[c]
	if !ok || world.IsEmpty(material) {
		return fmt.Errorf("no block at %s", c)
	}
	w.blocks[c] = "air"
	w.breaks = append(w.breaks, c)
	return nil
}

func (w *World) Equip(ctx context.Context, item string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, held := range w.inventory {
		if held == item {
			w.equips = append(w.equips, item)
			return nil
		}
	}
	return fmt.Errorf("item %s not in inventory", item)
}

func (w *World) Inventory(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.inventory...), nil
}

func (w *World) SetMovementIntent(ctx context.Context, dir world.Direction, active bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	w.held[dir] = active
	w.intents = append(w.intents, IntentEvent{Direction: dir, Active: active})
	return nil
}

func (w *World) Face(ctx context.Context, yaw, pitch float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	w.yaw = yaw
	w.pitch = pitch
	w.facings = append(w.facings, yaw)
	return nil
}

func (w *World) AgentPosition(ctx context.Context) (mgl64.Vec3, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return w.position, nil
}

func (w *World) AgentVelocity(ctx context.Context) (mgl64.Vec3, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return w.velocity, nil
}

// advance integrates movement since the previous tick. Callers hold mu.
func (w *World) advance() {
	now := w.clock.Now()
	dt := now.Sub(w.lastTick).Seconds()
	if dt <= 0 {
		return
	}
	w.lastTick = now

	start := w.position
	if !w.frozen {
		w.integrate(dt)
	}
	w.velocity = w.position.Sub(start).Mul(1 / dt)
}

func (w *World) integrate(dt float64) {
	forward := mgl64.Vec3{math.Sin(w.yaw), 0, math.Cos(w.yaw)}
	right := mgl64.Vec3{-math.Cos(w.yaw), 0, math.Sin(w.yaw)}

	var dir mgl64.Vec3
	if w.held[world.DirectionForward] {
		dir = dir.Add(forward)
	}
	if w.held[world.DirectionBack] {
		dir = dir.Sub(forward)
	}
	if w.held[world.DirectionRight] {
		dir = dir.Add(right)
	}
	if w.held[world.DirectionLeft] {
		dir = dir.Sub(right)
	}
	if dir.Len() < 1e-9 {
		w.settle()
		return
	}
	dir = dir.Normalize()

	remaining := w.Speed * dt
	for remaining > 1e-9 {
		step := math.Min(remaining, maxSubstep)
		remaining -= step

		next := w.position.Add(dir.Mul(step))
		cell := shared.FromPoint(next)
		switch {
		case w.fits(cell):
		case w.held[world.DirectionJump] && w.fits(cell.Up()):
			next = next.Add(mgl64.Vec3{0, 1, 0})
		default:
			w.settle()
			return
		}
		w.position = next
		w.settle()
	}
}

// settle drops the agent by at most one cell when nothing solid is below
func (w *World) settle() {
	feet := shared.FromPoint(w.position)
	below := feet.Down()
	material, ok := w.blocks[below]
	if !ok || world.IsSolid(material) {
		return
	}
	w.position = w.position.Sub(mgl64.Vec3{0, 1, 0})
}

// fits reports whether the agent's feet and head cells are passable
func (w *World) fits(c shared.Coordinate) bool {
	return !world.IsSolid(w.blocks[c]) && !world.IsSolid(w.blocks[c.Up()])
}

var _ world.Client = (*World)(nil)
