package excavation

import "fmt"

// ControllerState is the excavation controller's lifecycle state
type ControllerState string

const (
	StateIdle        ControllerState = "IDLE"
	StateDecomposing ControllerState = "DECOMPOSING"
	StateMining      ControllerState = "MINING"
	StatePaused      ControllerState = "PAUSED"
	StateCancelled   ControllerState = "CANCELLED"
	StateCompleted   ControllerState = "COMPLETED"
)

// transitions lists the allowed target states for each state
var transitions = map[ControllerState][]ControllerState{
	StateIdle:        {StateDecomposing, StateCancelled},
	StateDecomposing: {StateMining, StateIdle, StateCancelled},
	StateMining:      {StatePaused, StateCancelled, StateCompleted},
	StatePaused:      {StateMining, StateCancelled},
	StateCancelled:   {StateDecomposing},
	StateCompleted:   {StateDecomposing},
}

// CanTransition reports whether from -> to is a legal transition
func CanTransition(from, to ControllerState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive reports whether an excavation owns the controller in this state
func (s ControllerState) IsActive() bool {
	return s == StateDecomposing || s == StateMining || s == StatePaused
}

// AcceptsRequests reports whether a new excavation may start. Completed and
// Cancelled behave as Idle.
func (s ControllerState) AcceptsRequests() bool {
	return !s.IsActive()
}

// StateMachine guards controller state transitions. It is not safe for
// concurrent use; the controller serialises access.
type StateMachine struct {
	state ControllerState
}

// NewStateMachine creates a state machine in Idle
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateIdle}
}

// State returns the current state
func (m *StateMachine) State() ControllerState {
	return m.state
}

// Transition moves to the target state or returns an error
func (m *StateMachine) Transition(to ControllerState) error {
	if !CanTransition(m.state, to) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, to)
	}
	m.state = to
	return nil
}
