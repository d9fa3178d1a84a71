package excavation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ControllerState
		want     bool
	}{
		{StateIdle, StateDecomposing, true},
		{StateIdle, StateMining, false},
		{StateDecomposing, StateMining, true},
		{StateDecomposing, StateIdle, true},
		{StateDecomposing, StateCancelled, true},
		{StateMining, StatePaused, true},
		{StateMining, StateCompleted, true},
		{StateMining, StateCancelled, true},
		{StateMining, StateDecomposing, false},
		{StatePaused, StateMining, true},
		{StatePaused, StateCancelled, true},
		{StatePaused, StateCompleted, false},
		{StatePaused, StateDecomposing, false},
		{StateCompleted, StateDecomposing, true},
		{StateCompleted, StateMining, false},
		{StateCancelled, StateDecomposing, true},
		{StateCancelled, StatePaused, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestControllerState_AcceptsRequests(t *testing.T) {
	for _, s := range []ControllerState{StateIdle, StateCompleted, StateCancelled} {
		assert.True(t, s.AcceptsRequests(), s)
	}
	for _, s := range []ControllerState{StateDecomposing, StateMining, StatePaused} {
		assert.False(t, s.AcceptsRequests(), s)
		assert.True(t, s.IsActive(), s)
	}
}

func TestStateMachine_Lifecycle(t *testing.T) {
	m := NewStateMachine()
	assert.Equal(t, StateIdle, m.State())

	require.NoError(t, m.Transition(StateDecomposing))
	require.NoError(t, m.Transition(StateMining))
	require.NoError(t, m.Transition(StatePaused))
	require.NoError(t, m.Transition(StateMining))
	require.NoError(t, m.Transition(StateCompleted))

	err := m.Transition(StatePaused)
	assert.Error(t, err)
	assert.Equal(t, StateCompleted, m.State(), "rejected transitions leave state unchanged")
}
