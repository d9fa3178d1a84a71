package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/excavator-go/internal/domain/navigation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// GormGoalRepository keeps the navigation goal history
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGormGoalRepository creates a new goal repository
func NewGormGoalRepository(db *gorm.DB) *GormGoalRepository {
	return &GormGoalRepository{db: db}
}

// RecordGoal appends a finished goal
func (r *GormGoalRepository) RecordGoal(ctx context.Context, agent string, record navigation.GoalRecord) error {
	model := &NavigationGoalModel{
		Agent:      agent,
		TargetX:    record.Goal.Target.X,
		TargetY:    record.Goal.Target.Y,
		TargetZ:    record.Goal.Target.Z,
		Tolerance:  record.Goal.Options.Tolerance,
		TimeoutMs:  record.Goal.Options.Timeout.Milliseconds(),
		Outcome:    string(record.Outcome),
		Iterations: record.Iterations,
		Detours:    record.Detours,
		IssuedAt:   record.Goal.IssuedAt,
		FinishedAt: record.FinishedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record goal: %w", err)
	}
	return nil
}

// ListGoals returns the agent's goals, oldest first
func (r *GormGoalRepository) ListGoals(ctx context.Context, agent string, limit int) ([]navigation.GoalRecord, error) {
	var models []NavigationGoalModel

	query := r.db.WithContext(ctx).Where("agent = ?", agent).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	records := make([]navigation.GoalRecord, len(models))
	for i, m := range models {
		records[i] = navigation.GoalRecord{
			Goal: navigation.Goal{
				Target:   shared.NewCoordinate(m.TargetX, m.TargetY, m.TargetZ),
				IssuedAt: m.IssuedAt,
				Options: navigation.Options{
					Tolerance: m.Tolerance,
					Timeout:   time.Duration(m.TimeoutMs) * time.Millisecond,
				},
			},
			Outcome:    navigation.Outcome(m.Outcome),
			FinishedAt: m.FinishedAt,
			Iterations: m.Iterations,
			Detours:    m.Detours,
		}
	}
	return records, nil
}
