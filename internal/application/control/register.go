package control

import (
	"fmt"

	"github.com/andrescamacho/excavator-go/internal/application/mediator"
)

// NewMediator builds a mediator with every control command and query
// registered against registry. loggers may be nil.
func NewMediator(registry *Registry, loggers LoggerProvider) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	m.Use(TracingMiddleware())
	if loggers != nil {
		m.Use(AgentLoggerMiddleware(loggers))
	}

	stateChange := NewStateChangeHandler(registry)
	registrations := []error{
		mediator.RegisterHandler[*StartExcavationCommand](m, NewStartExcavationHandler(registry)),
		mediator.RegisterHandler[*PauseExcavationCommand](m, stateChange),
		mediator.RegisterHandler[*ResumeExcavationCommand](m, stateChange),
		mediator.RegisterHandler[*StopExcavationCommand](m, stateChange),
		mediator.RegisterHandler[*SetThroughputCommand](m, NewSetThroughputHandler(registry)),
		mediator.RegisterHandler[*GetStatusQuery](m, NewGetStatusHandler(registry)),
		mediator.RegisterHandler[*ListAgentsQuery](m, NewListAgentsHandler(registry)),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, fmt.Errorf("failed to register control handler: %w", err)
		}
	}
	return m, nil
}
