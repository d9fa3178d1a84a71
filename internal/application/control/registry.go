// Package control exposes the excavation controllers as mediator commands
// and queries so that every outer surface drives them the same way.
package control

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// Controller is the subset of the excavation controller driven remotely
type Controller interface {
	Agent() string
	Start(ctx context.Context, min, max shared.Coordinate, opts excavation.Options) (*excavation.Handle, error)
	Pause() bool
	Resume() bool
	Stop()
	SetThroughput(blocksPerSecond float64) error
	Status() excavation.Status
}

// ErrUnknownAgent is returned for requests naming an agent with no controller
var ErrUnknownAgent = errors.New("unknown agent")

// ErrNotApplicable is returned when pause or resume does not apply to the
// controller's current state
var ErrNotApplicable = errors.New("operation not applicable in current state")

// Registry indexes controllers by agent name. It is fixed after creation.
type Registry struct {
	controllers map[string]Controller
}

// NewRegistry indexes controllers, rejecting duplicate agent names
func NewRegistry(controllers ...Controller) (*Registry, error) {
	r := &Registry{controllers: make(map[string]Controller, len(controllers))}
	for _, c := range controllers {
		if _, dup := r.controllers[c.Agent()]; dup {
			return nil, shared.NewValidationError("agent", fmt.Sprintf("duplicate agent %q", c.Agent()))
		}
		r.controllers[c.Agent()] = c
	}
	return r, nil
}

// Get returns the controller for agent
func (r *Registry) Get(agent string) (Controller, error) {
	c, ok := r.controllers[agent]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, agent)
	}
	return c, nil
}

// Agents returns the registered agent names in sorted order
func (r *Registry) Agents() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
