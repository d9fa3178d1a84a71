package excavation

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Pacer bounds the rate of removal actions
type Pacer interface {
	// Wait blocks until the next action may proceed or ctx is done
	Wait(ctx context.Context) error
	// SetRate changes the rate in actions per second for subsequent waits
	SetRate(perSecond float64)
}

// RatePacer is a token-bucket Pacer with a burst of one, so consecutive
// actions are spaced by at least 1/rate.
type RatePacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewRatePacer creates a pacer allowing perSecond actions per second
func NewRatePacer(perSecond float64) *RatePacer {
	return &RatePacer{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()
	return limiter.Wait(ctx)
}

func (p *RatePacer) SetRate(perSecond float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiter.SetLimit(rate.Limit(perSecond))
}
