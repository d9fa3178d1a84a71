package helpers

import (
	"context"
	"sync"

	appExcavation "github.com/andrescamacho/excavator-go/internal/application/excavation"
)

// RecordingReporter captures excavation progress events
type RecordingReporter struct {
	mu     sync.Mutex
	events []appExcavation.ProgressEvent
}

func (r *RecordingReporter) Report(_ context.Context, e appExcavation.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns every event in order
func (r *RecordingReporter) Events() []appExcavation.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]appExcavation.ProgressEvent(nil), r.events...)
}

// Final returns the terminal event, if one was reported
func (r *RecordingReporter) Final() (appExcavation.ProgressEvent, bool) {
	for _, e := range r.Events() {
		if e.Final {
			return e, true
		}
	}
	return appExcavation.ProgressEvent{}, false
}

// InstantPacer never waits; it counts waits and remembers the last rate
type InstantPacer struct {
	mu    sync.Mutex
	waits int
	rate  float64
}

func (p *InstantPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	return ctx.Err()
}

func (p *InstantPacer) SetRate(perSecond float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = perSecond
}

// Waits returns how many times Wait was called
func (p *InstantPacer) Waits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits
}

// Rate returns the last rate set
func (p *InstantPacer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}
