package excavation

import (
	"context"

	"github.com/andrescamacho/excavator-go/internal/adapters/metrics"
	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
)

// LoggingReporter writes progress to the operation logger in ctx
type LoggingReporter struct{}

func (LoggingReporter) Report(ctx context.Context, e ProgressEvent) {
	logger := common.LoggerFromContext(ctx)
	metadata := map[string]interface{}{
		"operation_id": e.OperationID,
		"action":       "progress",
		"state":        string(e.State),
		"processed":    e.Processed,
		"total":        e.Total,
		"mined":        e.Mined,
		"skipped":      e.Skipped,
		"remaining":    e.Remaining,
	}
	if e.Final {
		metadata["action"] = "finished"
		metadata["duration_seconds"] = e.At.Sub(e.StartedAt).Seconds()
		logger.Log(common.LevelInfo, "Excavation finished", metadata)
		return
	}
	logger.Log(common.LevelInfo, "Excavation progress", metadata)
}

// MetricsReporter mirrors progress into the Prometheus gauges
type MetricsReporter struct{}

func (MetricsReporter) Report(_ context.Context, e ProgressEvent) {
	metrics.SetQueueRemaining(e.Agent, e.Remaining)
	if e.Final {
		metrics.RecordRunFinished(e.Agent, string(e.State), e.At.Sub(e.StartedAt).Seconds())
	}
}

// RunRecordReporter keeps a diagnostic run record up to date
type RunRecordReporter struct {
	repo excavation.RunRepository
}

// NewRunRecordReporter creates a reporter persisting to repo
func NewRunRecordReporter(repo excavation.RunRepository) *RunRecordReporter {
	return &RunRecordReporter{repo: repo}
}

func (r *RunRecordReporter) Report(ctx context.Context, e ProgressEvent) {
	record := &excavation.RunRecord{
		OperationID: e.OperationID,
		Agent:       e.Agent,
		Min:         e.Min,
		Max:         e.Max,
		State:       e.State,
		Total:       e.Total,
		Mined:       e.Mined,
		Skipped:     e.Skipped,
		Throughput:  e.Throughput,
		StartedAt:   e.StartedAt,
	}
	if e.Final {
		finished := e.At
		record.FinishedAt = &finished
	}
	if err := r.repo.SaveRun(ctx, record); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "Failed to save run record", map[string]interface{}{
			"operation_id": e.OperationID,
			"error":        err.Error(),
		})
	}
}
