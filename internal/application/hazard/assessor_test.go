package hazard_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/excavator-go/internal/adapters/world/sim"
	appHazard "github.com/andrescamacho/excavator-go/internal/application/hazard"
	domainHazard "github.com/andrescamacho/excavator-go/internal/domain/hazard"
	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
	"github.com/andrescamacho/excavator-go/internal/domain/world"
)

type stubMover struct {
	reached bool
	targets []shared.Coordinate
	opts    []navigation.Options
}

func (m *stubMover) GoTo(_ context.Context, target shared.Coordinate, opts navigation.Options) (bool, error) {
	m.targets = append(m.targets, target)
	m.opts = append(m.opts, opts)
	return m.reached, nil
}

func TestAssessor_Classify(t *testing.T) {
	w := sim.New(nil)
	w.SetBlock(shared.NewCoordinate(0, 0, 0), "lava")
	w.SetBlock(shared.NewCoordinate(1, 0, 0), "flowing_water")
	w.SetBlock(shared.NewCoordinate(2, 0, 0), "stone")
	assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

	tests := []struct {
		name string
		pos  shared.Coordinate
		want domainHazard.Classification
	}{
		{"lava", shared.NewCoordinate(0, 0, 0), domainHazard.Classification{HazardLiquid: true}},
		{"water by substring", shared.NewCoordinate(1, 0, 0), domainHazard.Classification{WaterLiquid: true}},
		{"solid", shared.NewCoordinate(2, 0, 0), domainHazard.Classification{}},
		{"unresolvable is assumed safe", shared.NewCoordinate(9, 9, 9), domainHazard.Classification{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assessor.Classify(context.Background(), tt.pos))
		})
	}
}

func TestAssessor_ScanVolume_SingleLavaCell(t *testing.T) {
	w := sim.New(nil)
	center := shared.NewCoordinate(10, 64, 10)
	w.Fill(center.Offset(-1, -1, -1), center.Offset(1, 1, 1), "stone")
	lava := center.Offset(1, 0, 0)
	w.SetBlock(lava, "lava")
	assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

	report, err := assessor.ScanVolume(context.Background(), center, 1)

	require.NoError(t, err)
	assert.False(t, report.IsSafe)
	assert.Equal(t, []shared.Coordinate{lava}, report.Lava)
	assert.Empty(t, report.Hostiles)

	primary, ok := report.PrimaryHazard()
	require.True(t, ok)
	assert.Equal(t, lava, primary)
}

func TestAssessor_ScanVolume_WaterAloneIsSafe(t *testing.T) {
	w := sim.New(nil)
	center := shared.NewCoordinate(0, 64, 0)
	w.SetBlock(center.Offset(0, -1, 0), "water")
	assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

	report, err := assessor.ScanVolume(context.Background(), center, 1)

	require.NoError(t, err)
	assert.True(t, report.IsSafe)
	assert.Len(t, report.Water, 1)
}

func TestAssessor_ScanVolume_HostilesInsideBoundsOnly(t *testing.T) {
	w := sim.New(nil)
	center := shared.NewCoordinate(0, 64, 0)
	w.SetEntities(
		world.Entity{ID: "1", Name: "zombie", Kind: world.EntityKindMob, Position: mgl64.Vec3{1.2, 64, 0.5}},
		world.Entity{ID: "2", Name: "skeleton", Kind: world.EntityKindMob, Position: mgl64.Vec3{8, 64, 8}},
		world.Entity{ID: "3", Name: "cow", Kind: world.EntityKindMob, Position: mgl64.Vec3{0.5, 64, 0.5}},
		world.Entity{ID: "4", Name: "zombie", Kind: world.EntityKindObject, Position: mgl64.Vec3{0.5, 64, 0.5}},
	)
	assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

	report, err := assessor.ScanVolume(context.Background(), center, 1)

	require.NoError(t, err)
	assert.False(t, report.IsSafe)
	require.Len(t, report.Hostiles, 1)
	assert.Equal(t, "1", report.Hostiles[0].ID)
}

func TestAssessor_ScanVolume_RejectsNegativeRadius(t *testing.T) {
	assessor := appHazard.NewAssessor(sim.New(nil), nil, appHazard.Config{})

	_, err := assessor.ScanVolume(context.Background(), shared.Coordinate{}, -1)

	var vErr *shared.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAssessor_DetectHostiles(t *testing.T) {
	w := sim.New(nil)
	w.Teleport(mgl64.Vec3{0, 64, 0})
	w.SetEntities(
		world.Entity{ID: "z", Name: "creeper", Kind: world.EntityKindMob, Position: mgl64.Vec3{30, 64, 0}},
		world.Entity{ID: "s", Name: "sheep", Kind: world.EntityKindMob, Position: mgl64.Vec3{2, 64, 0}},
	)
	assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

	assessment, err := assessor.DetectHostiles(context.Background(), 16)

	require.NoError(t, err)
	assert.Equal(t, domainHazard.ThreatHigh, assessment.ThreatLevel, "threat ignores maxDistance")
	require.Len(t, assessment.Hostiles, 1)
	require.Len(t, assessment.Peaceful, 1)
	assert.InDelta(t, 30.0, assessment.Hostiles[0].Distance, 1e-9)
	assert.Empty(t, assessment.Nearby())

	near, err := assessor.HasHostiles(context.Background(), 16)
	require.NoError(t, err)
	assert.False(t, near)

	far, err := assessor.HasHostiles(context.Background(), 40)
	require.NoError(t, err)
	assert.True(t, far)
}

func TestAssessor_Mitigate(t *testing.T) {
	w := sim.New(nil)
	w.Teleport(mgl64.Vec3{0.5, 64, 0.5})
	hazardPos := shared.NewCoordinate(1, 64, 1)

	t.Run("escape point is up and away from the hazard", func(t *testing.T) {
		mover := &stubMover{reached: true}
		assessor := appHazard.NewAssessor(w, mover, appHazard.Config{})

		ok := assessor.Mitigate(context.Background(), hazardPos)

		assert.True(t, ok)
		require.Len(t, mover.targets, 1)
		assert.Equal(t, shared.NewCoordinate(-2, 66, -2), mover.targets[0])
		assert.Equal(t, appHazard.DefaultConfig().EscapeTimeout, mover.opts[0].Timeout)
		assert.True(t, mover.opts[0].AvoidLava)
	})

	t.Run("movement failure yields false", func(t *testing.T) {
		mover := &stubMover{reached: false}
		assessor := appHazard.NewAssessor(w, mover, appHazard.Config{})

		assert.False(t, assessor.Mitigate(context.Background(), hazardPos))
	})

	t.Run("no mover yields false", func(t *testing.T) {
		assessor := appHazard.NewAssessor(w, nil, appHazard.Config{})

		assert.False(t, assessor.Mitigate(context.Background(), hazardPos))
	})
}
