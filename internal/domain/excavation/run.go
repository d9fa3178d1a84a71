package excavation

import (
	"context"
	"time"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// RunRecord is the diagnostic summary of one excavation request.
// It is never read back to resume work.
type RunRecord struct {
	OperationID string
	Agent       string
	Min         shared.Coordinate
	Max         shared.Coordinate
	State       ControllerState
	Total       int
	Mined       int
	Skipped     int
	Throughput  float64
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// IsFinished reports whether the run reached a terminal state
func (r *RunRecord) IsFinished() bool {
	return r.State == StateCompleted || r.State == StateCancelled
}

// RunRepository stores run records
type RunRepository interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	FindRun(ctx context.Context, operationID string) (*RunRecord, error)
	ListRuns(ctx context.Context, agent string, limit int) ([]*RunRecord, error)
}
