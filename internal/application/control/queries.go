package control

import (
	"context"
	"fmt"

	"github.com/andrescamacho/excavator-go/internal/application/mediator"
)

// GetStatusQuery reads one agent's controller status
type GetStatusQuery struct {
	Agent string
}

// ListAgentsQuery reads every agent's status, sorted by name
type ListAgentsQuery struct{}

// ListAgentsResponse holds the statuses of every registered agent
type ListAgentsResponse struct {
	Agents []AgentStatus
}

type GetStatusHandler struct {
	registry *Registry
}

func NewGetStatusHandler(registry *Registry) *GetStatusHandler {
	return &GetStatusHandler{registry: registry}
}

func (h *GetStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatusQuery")
	}
	ctrl, err := h.registry.Get(query.Agent)
	if err != nil {
		return nil, err
	}
	return &AgentStatus{Agent: query.Agent, Status: ctrl.Status()}, nil
}

type ListAgentsHandler struct {
	registry *Registry
}

func NewListAgentsHandler(registry *Registry) *ListAgentsHandler {
	return &ListAgentsHandler{registry: registry}
}

func (h *ListAgentsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListAgentsQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListAgentsQuery")
	}
	names := h.registry.Agents()
	resp := &ListAgentsResponse{Agents: make([]AgentStatus, 0, len(names))}
	for _, name := range names {
		ctrl, _ := h.registry.Get(name)
		resp.Agents = append(resp.Agents, AgentStatus{Agent: name, Status: ctrl.Status()})
	}
	return resp, nil
}
