package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// ErrRunNotFound is returned by FindRun for unknown operation IDs
var ErrRunNotFound = errors.New("excavation run not found")

// GormRunRepository implements excavation.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun inserts or updates a run record keyed by operation ID
func (r *GormRunRepository) SaveRun(ctx context.Context, run *excavation.RunRecord) error {
	model := runToModel(run)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operation_id"}},
		UpdateAll: true,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save run %s: %w", run.OperationID, result.Error)
	}
	return nil
}

// FindRun retrieves a run by operation ID
func (r *GormRunRepository) FindRun(ctx context.Context, operationID string) (*excavation.RunRecord, error) {
	var model ExcavationRunModel
	result := r.db.WithContext(ctx).Where("operation_id = ?", operationID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, operationID)
		}
		return nil, fmt.Errorf("failed to find run: %w", result.Error)
	}
	return modelToRun(&model), nil
}

// ListRuns returns the most recent runs, newest first. An empty agent lists
// every agent; limit <= 0 means no limit.
func (r *GormRunRepository) ListRuns(ctx context.Context, agent string, limit int) ([]*excavation.RunRecord, error) {
	var models []ExcavationRunModel

	query := r.db.WithContext(ctx)
	if agent != "" {
		query = query.Where("agent = ?", agent)
	}
	query = query.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*excavation.RunRecord, len(models))
	for i := range models {
		runs[i] = modelToRun(&models[i])
	}
	return runs, nil
}

func runToModel(run *excavation.RunRecord) *ExcavationRunModel {
	return &ExcavationRunModel{
		OperationID: run.OperationID,
		Agent:       run.Agent,
		MinX:        run.Min.X,
		MinY:        run.Min.Y,
		MinZ:        run.Min.Z,
		MaxX:        run.Max.X,
		MaxY:        run.Max.Y,
		MaxZ:        run.Max.Z,
		State:       string(run.State),
		Total:       run.Total,
		Mined:       run.Mined,
		Skipped:     run.Skipped,
		Throughput:  run.Throughput,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
}

func modelToRun(model *ExcavationRunModel) *excavation.RunRecord {
	return &excavation.RunRecord{
		OperationID: model.OperationID,
		Agent:       model.Agent,
		Min:         shared.NewCoordinate(model.MinX, model.MinY, model.MinZ),
		Max:         shared.NewCoordinate(model.MaxX, model.MaxY, model.MaxZ),
		State:       excavation.ControllerState(model.State),
		Total:       model.Total,
		Mined:       model.Mined,
		Skipped:     model.Skipped,
		Throughput:  model.Throughput,
		StartedAt:   model.StartedAt,
		FinishedAt:  model.FinishedAt,
	}
}

var _ excavation.RunRepository = (*GormRunRepository)(nil)
