package lifecycle

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// State is the coarse process state.
type State int32

const (
	Initializing State = iota
	Running
	Paused
	Stopping
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Hook observes a completed transition.
type Hook func(from, to State)

// Gate holds the current lifecycle state and validates transitions.
// State() is safe to call from any goroutine at any rate; transitions are
// serialized. Hooks run synchronously inside the transition, in
// registration order.
type Gate struct {
	state atomic.Int32

	mu    sync.Mutex
	hooks []Hook
}

// NewGate returns a gate in the Initializing state.
func NewGate() *Gate {
	return &Gate{}
}

// State returns the current state.
func (g *Gate) State() State {
	return State(g.state.Load())
}

// OnTransition registers a hook. Intended for the bootstrap phase, before
// transitions begin.
func (g *Gate) OnTransition(h Hook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, h)
}

var allowed = map[State][]State{
	Initializing: {Running, Stopping},
	Running:      {Paused, Stopping},
	Paused:       {Running, Stopping},
	Stopping:     {Stopped},
}

// To moves the gate to the target state, failing on an invalid transition.
// Stopped is terminal.
func (g *Gate) To(target State) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	from := State(g.state.Load())
	ok := false
	for _, next := range allowed[from] {
		if next == target {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("lifecycle: invalid transition %s -> %s", from, target)
	}
	g.state.Store(int32(target))
	for _, h := range g.hooks {
		h(from, target)
	}
	return nil
}
