package excavation

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// ProgressEvent is emitted every ProgressEvery processed cells and once
// more when the run ends
type ProgressEvent struct {
	OperationID string
	Agent       string
	State       excavation.ControllerState
	Min         shared.Coordinate
	Max         shared.Coordinate
	Total       int
	Processed   int
	Mined       int
	Skipped     int
	Remaining   int
	Throughput  float64
	StartedAt   time.Time
	At          time.Time
	Final       bool
}

// ProgressReporter receives progress and terminal events. Report is called
// from the excavation loop and must not block for long.
type ProgressReporter interface {
	Report(ctx context.Context, event ProgressEvent)
}

// Status is a point-in-time view of a controller
type Status struct {
	State          excavation.ControllerState `json:"state"`
	QueueRemaining int                        `json:"queue_remaining"`
	Throughput     float64                    `json:"throughput"`
	OperationID    string                     `json:"operation_id,omitempty"`
	Mined          int                        `json:"mined"`
	Skipped        int                        `json:"skipped"`
}

// Summary is the outcome of a finished run
type Summary struct {
	OperationID string
	State       excavation.ControllerState
	Total       int
	Mined       int
	Skipped     int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Handle tracks one excavation request
type Handle struct {
	OperationID string

	done    chan struct{}
	mu      sync.Mutex
	summary Summary
}

func newHandle(operationID string) *Handle {
	return &Handle{OperationID: operationID, done: make(chan struct{})}
}

// Done is closed once the run reaches Completed or Cancelled
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Summary returns the run outcome. It is only meaningful after Done is closed.
func (h *Handle) Summary() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.summary
}

// Wait blocks until the run finishes or ctx is done
func (h *Handle) Wait(ctx context.Context) (Summary, error) {
	select {
	case <-h.done:
		return h.Summary(), nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

func (h *Handle) finish(s Summary) {
	h.mu.Lock()
	h.summary = s
	h.mu.Unlock()
	close(h.done)
}
