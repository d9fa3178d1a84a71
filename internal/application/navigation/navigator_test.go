package navigation_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/excavator-go/internal/adapters/world/sim"
	appNav "github.com/andrescamacho/excavator-go/internal/application/navigation"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

type lavaClassifier struct {
	lava map[shared.Coordinate]bool
}

func (c lavaClassifier) Classify(_ context.Context, pos shared.Coordinate) domainHazard.Classification {
	return domainHazard.Classification{HazardLiquid: c.lava[pos]}
}

type recordedGoal struct {
	agent  string
	record navigation.GoalRecord
}

type goalRecorder struct {
	goals []recordedGoal
}

func (r *goalRecorder) RecordGoal(_ context.Context, agent string, record navigation.GoalRecord) error {
	r.goals = append(r.goals, recordedGoal{agent: agent, record: record})
	return nil
}

func flatWorld(clock shared.Clock) *sim.World {
	w := sim.New(clock)
	w.Fill(shared.NewCoordinate(-16, 63, -16), shared.NewCoordinate(16, 63, 16), "stone")
	w.Teleport(mgl64.Vec3{0.5, 64, 0.5})
	return w
}

func TestNavigator_GoTo_AlreadyAtTarget(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	nav := appNav.NewNavigator(w, nil, clock, appNav.Config{Agent: "test"})

	reached, err := nav.GoTo(context.Background(), shared.NewCoordinate(0, 64, 0), navigation.Options{})

	require.NoError(t, err)
	assert.True(t, reached)
	assert.Empty(t, w.Intents(), "no movement should be issued when already at the target")

	history := nav.History()
	require.Len(t, history, 1)
	assert.Equal(t, navigation.OutcomeReached, history[0].Outcome)
	assert.False(t, nav.IsNavigating())
}

func TestNavigator_GoTo_ConvergesOnFlatGround(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	recorder := &goalRecorder{}
	nav := appNav.NewNavigator(w, nil, clock, appNav.Config{Agent: "digger-1"})
	nav.SetRecorder(recorder)

	target := shared.NewCoordinate(6, 64, 0)
	reached, err := nav.GoTo(context.Background(), target, navigation.Options{})

	require.NoError(t, err)
	assert.True(t, reached)

	dest := mgl64.Vec3{6.5, 64, 0.5}
	assert.Less(t, w.Position().Sub(dest).Len(), navigation.DefaultTolerance)
	assert.False(t, w.AnyHeld(), "movement intents must be released after a goal")

	require.Len(t, recorder.goals, 1)
	assert.Equal(t, "digger-1", recorder.goals[0].agent)
	assert.Equal(t, target, recorder.goals[0].record.Goal.Target)
	assert.Equal(t, navigation.OutcomeReached, recorder.goals[0].record.Outcome)
}

func TestNavigator_GoTo_TimesOutWhenUnreachable(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	w.Freeze(true)
	cfg := appNav.DefaultConfig()
	nav := appNav.NewNavigator(w, nil, clock, cfg)

	timeout := 2 * time.Second
	start := clock.Now()
	reached, err := nav.GoTo(context.Background(), shared.NewCoordinate(10, 64, 10), navigation.Options{Timeout: timeout})
	elapsed := clock.Now().Sub(start)

	require.NoError(t, err)
	assert.False(t, reached)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.LessOrEqual(t, elapsed, timeout+cfg.StepInterval, "overrun is bounded by one step")
	assert.False(t, w.AnyHeld())

	history := nav.History()
	require.Len(t, history, 1)
	assert.Equal(t, navigation.OutcomeTimedOut, history[0].Outcome)
}

func TestNavigator_GoTo_DetoursAroundObstacle(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	w.Fill(shared.NewCoordinate(2, 64, 0), shared.NewCoordinate(2, 65, 0), "stone")
	nav := appNav.NewNavigator(w, nil, clock, appNav.Config{})

	reached, err := nav.GoTo(context.Background(), shared.NewCoordinate(6, 64, 0), navigation.Options{CheckObstacles: true})

	require.NoError(t, err)
	assert.True(t, reached)
	assert.Contains(t, w.Intents(), sim.IntentEvent{Direction: world.DirectionRight, Active: true})

	history := nav.History()
	require.Len(t, history, 1)
	assert.GreaterOrEqual(t, history[0].Detours, 1)
}

func TestNavigator_GoTo_SolidTargetIsNotAnObstacle(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	target := shared.NewCoordinate(8, 64, 0)
	w.SetBlock(target, "stone")
	nav := appNav.NewNavigator(w, nil, clock, appNav.Config{})

	reached, err := nav.GoTo(context.Background(), target, navigation.Options{
		CheckObstacles: true,
		Timeout:        10 * time.Second,
	})

	require.NoError(t, err)
	assert.True(t, reached)
	assert.Less(t, w.Position().Sub(mgl64.Vec3{8.5, 64, 0.5}).Len(), navigation.DefaultTolerance)
	assert.Equal(t, "stone", w.Block(target))

	history := nav.History()
	require.Len(t, history, 1)
	assert.Zero(t, history[0].Detours)
}

func TestNavigator_GoTo_IgnoresSolidCellsWithinTolerance(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	// A wall right in front of the target: with a wide tolerance the agent
	// arrives before it matters.
	w.Fill(shared.NewCoordinate(7, 64, -1), shared.NewCoordinate(7, 65, 1), "stone")
	nav := appNav.NewNavigator(w, nil, clock, appNav.Config{})

	reached, err := nav.GoTo(context.Background(), shared.NewCoordinate(9, 64, 0), navigation.Options{
		CheckObstacles: true,
		Tolerance:      4,
		Timeout:        10 * time.Second,
	})

	require.NoError(t, err)
	assert.True(t, reached)
	history := nav.History()
	require.Len(t, history, 1)
	assert.Zero(t, history[0].Detours)
}

func TestNavigator_GoTo_StepsAwayFromLava(t *testing.T) {
	clock := shared.NewMockClock(time.Time{})
	w := flatWorld(clock)
	classifier := lavaClassifier{lava: map[shared.Coordinate]bool{
		shared.NewCoordinate(1, 64, 0): true,
	}}
	nav := appNav.NewNavigator(w, classifier, clock, appNav.Config{})

	reached, err := nav.GoTo(context.Background(), shared.NewCoordinate(10, 64, 0), navigation.Options{
		AvoidLava: true,
		Timeout:   300 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.False(t, reached)

	// +X holds lava, so the first hazard-free neighbour is -X
	facings := w.Facings()
	require.NotEmpty(t, facings)
	assert.InDelta(t, -math.Pi/2, facings[0], 1e-9)

	history := nav.History()
	require.Len(t, history, 1)
	assert.GreaterOrEqual(t, history[0].Detours, 1)
}

func TestNavigator_StopCancelsActiveGoal(t *testing.T) {
	w := flatWorld(nil)
	w.Freeze(true)
	nav := appNav.NewNavigator(w, nil, nil, appNav.Config{StepInterval: 5 * time.Millisecond})

	done := make(chan bool, 1)
	go func() {
		reached, _ := nav.GoTo(context.Background(), shared.NewCoordinate(10, 64, 10), navigation.Options{Timeout: 10 * time.Second})
		done <- reached
	}()

	require.Eventually(t, nav.IsNavigating, time.Second, time.Millisecond)

	_, err := nav.GoTo(context.Background(), shared.NewCoordinate(0, 64, 0), navigation.Options{})
	assert.ErrorIs(t, err, appNav.ErrNavigatorBusy)

	nav.Stop()

	select {
	case reached := <-done:
		assert.False(t, reached)
	case <-time.After(2 * time.Second):
		t.Fatal("GoTo did not return after Stop")
	}

	assert.False(t, nav.IsNavigating())
	assert.False(t, w.AnyHeld())
	history := nav.History()
	require.Len(t, history, 1)
	assert.Equal(t, navigation.OutcomeCancelled, history[0].Outcome)
}

func TestNavigator_StopWhenIdleIsHarmless(t *testing.T) {
	w := flatWorld(nil)
	nav := appNav.NewNavigator(w, nil, nil, appNav.Config{})

	nav.Stop()

	assert.False(t, nav.IsNavigating())
	assert.False(t, w.AnyHeld())
	assert.Empty(t, nav.History())
}
