package dictation

import (
	"log/slog"
	"slices"
	"sync"

	"go.aimuz.me/dictation/internal/types"
)

// StateMachine holds the shared application state. It is safe for concurrent
// use by the orchestrator and UI collaborators.
type StateMachine struct {
	mu        sync.RWMutex
	state     types.AppState
	observers []func(from, to types.AppState)
}

// NewStateMachine returns a StateMachine starting in initial.
func NewStateMachine(initial types.AppState) *StateMachine {
	return &StateMachine{state: initial}
}

// Get returns the current state.
func (m *StateMachine) Get() types.AppState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Set stores s. Writing the current value is a no-op: nothing is logged and
// no observer is called.
func (m *StateMachine) Set(s types.AppState) {
	m.mu.Lock()
	old := m.state
	if old == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	observers := m.observers
	m.mu.Unlock()

	slog.Info("state changed", "from", old, "to", s)
	notify(observers, old, s)
}

// Transition stores to only if the current state is one of from, and reports
// whether it did. The check and the write happen under one lock, so a
// concurrent pause is never overwritten.
func (m *StateMachine) Transition(to types.AppState, from ...types.AppState) bool {
	m.mu.Lock()
	old := m.state
	if !slices.Contains(from, old) {
		m.mu.Unlock()
		return false
	}
	if old == to {
		m.mu.Unlock()
		return true
	}
	m.state = to
	observers := m.observers
	m.mu.Unlock()

	slog.Info("state changed", "from", old, "to", to)
	notify(observers, old, to)
	return true
}

// TogglePause resumes when paused and pauses otherwise, returning the new
// state. The state before a pause is not remembered: resuming always goes to
// Active.
func (m *StateMachine) TogglePause() types.AppState {
	m.mu.Lock()
	old := m.state
	next := types.StatePaused
	if old == types.StatePaused {
		next = types.StateActive
	}
	m.state = next
	observers := m.observers
	m.mu.Unlock()

	slog.Info("pause toggled", "from", old, "to", next)
	notify(observers, old, next)
	return next
}

// OnChange registers fn to be called after every state change. Observers run
// on the goroutine that made the change, outside the lock.
func (m *StateMachine) OnChange(fn func(from, to types.AppState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers[:len(m.observers):len(m.observers)], fn)
}

func notify(observers []func(from, to types.AppState), from, to types.AppState) {
	for _, fn := range observers {
		fn(from, to)
	}
}
