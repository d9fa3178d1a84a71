package persistence

import (
	"time"
)

// ExcavationRunModel represents the excavation_runs table
type ExcavationRunModel struct {
	OperationID string     `gorm:"column:operation_id;primaryKey;not null"`
	Agent       string     `gorm:"column:agent;not null;index"`
	MinX        int        `gorm:"column:min_x;not null"`
	MinY        int        `gorm:"column:min_y;not null"`
	MinZ        int        `gorm:"column:min_z;not null"`
	MaxX        int        `gorm:"column:max_x;not null"`
	MaxY        int        `gorm:"column:max_y;not null"`
	MaxZ        int        `gorm:"column:max_z;not null"`
	State       string     `gorm:"column:state;not null"`
	Total       int        `gorm:"column:total;default:0"`
	Mined       int        `gorm:"column:mined;default:0"`
	Skipped     int        `gorm:"column:skipped;default:0"`
	Throughput  float64    `gorm:"column:throughput;not null"`
	StartedAt   time.Time  `gorm:"column:started_at;not null"`
	FinishedAt  *time.Time `gorm:"column:finished_at"`
}

func (ExcavationRunModel) TableName() string {
	return "excavation_runs"
}

// OperationLogModel represents the operation_logs table
type OperationLogModel struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	OperationID string    `gorm:"column:operation_id;index"`
	Agent       string    `gorm:"column:agent;not null"`
	Timestamp   time.Time `gorm:"column:timestamp;not null"`
	Level       string    `gorm:"column:level;not null;default:'INFO'"`
	Message     string    `gorm:"column:message;type:text;not null"`
	Metadata    string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (OperationLogModel) TableName() string {
	return "operation_logs"
}

// NavigationGoalModel represents the navigation_goals table
type NavigationGoalModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	Agent      string    `gorm:"column:agent;not null;index"`
	TargetX    int       `gorm:"column:target_x;not null"`
	TargetY    int       `gorm:"column:target_y;not null"`
	TargetZ    int       `gorm:"column:target_z;not null"`
	Tolerance  float64   `gorm:"column:tolerance;not null"`
	TimeoutMs  int64     `gorm:"column:timeout_ms;not null"`
	Outcome    string    `gorm:"column:outcome;not null"`
	Iterations int       `gorm:"column:iterations;default:0"`
	Detours    int       `gorm:"column:detours;default:0"`
	IssuedAt   time.Time `gorm:"column:issued_at;not null"`
	FinishedAt time.Time `gorm:"column:finished_at;not null"`
}

func (NavigationGoalModel) TableName() string {
	return "navigation_goals"
}
