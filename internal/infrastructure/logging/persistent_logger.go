package logging

import (
	"context"
	"time"

	"k8s.io/klog/v2"
)

// LogSink stores operation log entries. The GORM operation log repository
// satisfies it.
type LogSink interface {
	Log(ctx context.Context, operationID, agent, level, message string, metadata map[string]interface{}) error
}

// PersistentLogger writes entries carrying an operation_id to a LogSink.
// Entries without one are not tied to a run and are dropped.
type PersistentLogger struct {
	sink     LogSink
	agent    string
	minLevel int
	timeout  time.Duration
}

// NewPersistentLogger creates a logger persisting entries at or above level
func NewPersistentLogger(sink LogSink, agent, level string) *PersistentLogger {
	return &PersistentLogger{
		sink:     sink,
		agent:    agent,
		minLevel: levelRank(level),
		timeout:  2 * time.Second,
	}
}

func (p *PersistentLogger) Log(level, message string, metadata map[string]interface{}) {
	if levelRank(level) < p.minLevel {
		return
	}
	opID, _ := metadata["operation_id"].(string)
	if opID == "" {
		return
	}
	agent := p.agent
	if a, ok := metadata["agent"].(string); ok && a != "" {
		agent = a
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.sink.Log(ctx, opID, agent, level, message, metadata); err != nil {
		klog.ErrorS(err, "failed to persist operation log", "operation_id", opID)
	}
}
