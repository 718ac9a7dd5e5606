package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateStartsInitializing(t *testing.T) {
	g := NewGate()
	assert.Equal(t, Initializing, g.State())
}

func TestGateFullLifecycle(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.To(Running))
	require.NoError(t, g.To(Paused))
	require.NoError(t, g.To(Running))
	require.NoError(t, g.To(Stopping))
	require.NoError(t, g.To(Stopped))
	assert.Equal(t, Stopped, g.State())
}

func TestGateRejectsInvalidTransitions(t *testing.T) {
	g := NewGate()
	assert.Error(t, g.To(Paused), "cannot pause before running")
	assert.Error(t, g.To(Stopped), "cannot stop without stopping first")

	require.NoError(t, g.To(Running))
	assert.Error(t, g.To(Running), "self transition rejected")
}

func TestGateStoppedIsTerminal(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.To(Stopping))
	require.NoError(t, g.To(Stopped))
	assert.Error(t, g.To(Running))
	assert.Error(t, g.To(Stopping))
}

func TestGateHooksObserveTransitions(t *testing.T) {
	g := NewGate()
	type hop struct{ from, to State }
	var seen []hop
	g.OnTransition(func(from, to State) { seen = append(seen, hop{from, to}) })

	require.NoError(t, g.To(Running))
	require.NoError(t, g.To(Paused))

	require.Len(t, seen, 2)
	assert.Equal(t, hop{Initializing, Running}, seen[0])
	assert.Equal(t, hop{Running, Paused}, seen[1])
}

func TestGateFailedTransitionSkipsHooks(t *testing.T) {
	g := NewGate()
	calls := 0
	g.OnTransition(func(State, State) { calls++ })
	assert.Error(t, g.To(Stopped))
	assert.Equal(t, 0, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "stopped", Stopped.String())
}
