package navigation

import (
	"time"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

const (
	// DefaultTolerance is the arrival distance used when Options.Tolerance is zero
	DefaultTolerance = 1.5
	// DefaultTimeout bounds a goal when Options.Timeout is zero
	DefaultTimeout = 30 * time.Second
)

// Options controls a single navigation call
type Options struct {
	Tolerance      float64
	Timeout        time.Duration
	CheckObstacles bool
	AvoidLava      bool
	AvoidWater     bool
}

// WithDefaults fills zero fields with the default tolerance and timeout
func (o Options) WithDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Goal is one navigation request. It lives for the duration of a single call.
type Goal struct {
	Target   shared.Coordinate
	IssuedAt time.Time
	Options  Options
}

// Outcome is how a goal ended
type Outcome string

const (
	OutcomeReached   Outcome = "REACHED"
	OutcomeTimedOut  Outcome = "TIMED_OUT"
	OutcomeCancelled Outcome = "CANCELLED"
)

// GoalRecord is an entry of the append-only goal history
type GoalRecord struct {
	Goal       Goal
	Outcome    Outcome
	FinishedAt time.Time
	Iterations int
	Detours    int
}

// Duration returns how long the goal was active
func (r GoalRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.Goal.IssuedAt)
}
