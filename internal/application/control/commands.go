package control

import (
	"context"
	"fmt"

	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/application/excavation"
	"github.com/andrescamacho/excavator-go/internal/application/mediator"
	domainExcavation "github.com/andrescamacho/excavator-go/internal/domain/excavation"
	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// StartExcavationCommand begins clearing the box spanned by Min and Max
type StartExcavationCommand struct {
	Agent   string
	Min     shared.Coordinate
	Max     shared.Coordinate
	Options excavation.Options
}

// StartExcavationResponse identifies the accepted run
type StartExcavationResponse struct {
	OperationID string
	State       domainExcavation.ControllerState
	Handle      *excavation.Handle
}

// PauseExcavationCommand freezes a mining run
type PauseExcavationCommand struct {
	Agent string
}

// ResumeExcavationCommand continues a paused run
type ResumeExcavationCommand struct {
	Agent string
}

// StopExcavationCommand cancels whatever the agent is doing. Always succeeds
// for a known agent.
type StopExcavationCommand struct {
	Agent string
}

// SetThroughputCommand changes an agent's removal rate
type SetThroughputCommand struct {
	Agent           string
	BlocksPerSecond float64
}

// AgentStatus is the controller status of one agent
type AgentStatus struct {
	Agent string `json:"agent"`
	excavation.Status
}

// StartExcavationHandler handles StartExcavationCommand
type StartExcavationHandler struct {
	registry *Registry
}

func NewStartExcavationHandler(registry *Registry) *StartExcavationHandler {
	return &StartExcavationHandler{registry: registry}
}

func (h *StartExcavationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartExcavationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartExcavationCommand")
	}
	ctrl, err := h.registry.Get(cmd.Agent)
	if err != nil {
		return nil, err
	}

	handle, err := ctrl.Start(ctx, cmd.Min, cmd.Max, cmd.Options)
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "Excavation request rejected", map[string]interface{}{
			"agent": cmd.Agent,
			"min":   cmd.Min.String(),
			"max":   cmd.Max.String(),
			"error": err.Error(),
		})
		return nil, err
	}
	return &StartExcavationResponse{
		OperationID: handle.OperationID,
		State:       ctrl.Status().State,
		Handle:      handle,
	}, nil
}

// StateChangeHandler handles pause, resume and stop. The response is the
// agent's status after the change.
type StateChangeHandler struct {
	registry *Registry
}

func NewStateChangeHandler(registry *Registry) *StateChangeHandler {
	return &StateChangeHandler{registry: registry}
}

func (h *StateChangeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	var (
		agent string
		apply func(Controller) bool
	)
	switch cmd := request.(type) {
	case *PauseExcavationCommand:
		agent, apply = cmd.Agent, Controller.Pause
	case *ResumeExcavationCommand:
		agent, apply = cmd.Agent, Controller.Resume
	case *StopExcavationCommand:
		agent, apply = cmd.Agent, func(c Controller) bool { c.Stop(); return true }
	default:
		return nil, fmt.Errorf("invalid request type: %T", request)
	}

	ctrl, err := h.registry.Get(agent)
	if err != nil {
		return nil, err
	}
	if !apply(ctrl) {
		return nil, fmt.Errorf("%w: controller is %s", ErrNotApplicable, ctrl.Status().State)
	}
	return &AgentStatus{Agent: agent, Status: ctrl.Status()}, nil
}

// SetThroughputHandler handles SetThroughputCommand
type SetThroughputHandler struct {
	registry *Registry
}

func NewSetThroughputHandler(registry *Registry) *SetThroughputHandler {
	return &SetThroughputHandler{registry: registry}
}

func (h *SetThroughputHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SetThroughputCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetThroughputCommand")
	}
	ctrl, err := h.registry.Get(cmd.Agent)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetThroughput(cmd.BlocksPerSecond); err != nil {
		return nil, err
	}
	return &AgentStatus{Agent: cmd.Agent, Status: ctrl.Status()}, nil
}
