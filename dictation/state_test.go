package dictation

import (
	"sync"
	"testing"

	"go.aimuz.me/dictation/internal/types"
)

type transition struct {
	from, to types.AppState
}

func recordTransitions(m *StateMachine) func() []transition {
	var (
		mu  sync.Mutex
		got []transition
	)
	m.OnChange(func(from, to types.AppState) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, transition{from, to})
	})
	return func() []transition {
		mu.Lock()
		defer mu.Unlock()
		return append([]transition(nil), got...)
	}
}

func TestStateMachine_SetIdempotent(t *testing.T) {
	m := NewStateMachine(types.StateActive)
	transitions := recordTransitions(m)

	m.Set(types.StateActive)
	if n := len(transitions()); n != 0 {
		t.Fatalf("Set to current state produced %d transitions, want 0", n)
	}

	m.Set(types.StateSpeaking)
	m.Set(types.StateSpeaking)
	m.Set(types.StateAutoPaused)

	want := []transition{
		{types.StateActive, types.StateSpeaking},
		{types.StateSpeaking, types.StateAutoPaused},
	}
	got := transitions()
	if len(got) != len(want) {
		t.Fatalf("got %d transitions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, got[i], want[i])
		}
	}
	if m.Get() != types.StateAutoPaused {
		t.Fatalf("Get() = %v, want %v", m.Get(), types.StateAutoPaused)
	}
}

func TestStateMachine_TogglePause(t *testing.T) {
	tests := []struct {
		from types.AppState
		want types.AppState
	}{
		{types.StateActive, types.StatePaused},
		{types.StatePaused, types.StateActive},
		{types.StateAutoPaused, types.StatePaused},
		{types.StateSpeaking, types.StatePaused},
		{types.StateMicConflict, types.StatePaused},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			m := NewStateMachine(tt.from)
			if got := m.TogglePause(); got != tt.want {
				t.Fatalf("TogglePause() = %v, want %v", got, tt.want)
			}
			if m.Get() != tt.want {
				t.Fatalf("Get() = %v, want %v", m.Get(), tt.want)
			}
		})
	}
}

func TestStateMachine_Transition(t *testing.T) {
	listening := []types.AppState{types.StateActive, types.StateAutoPaused}
	tests := []struct {
		name    string
		current types.AppState
		to      types.AppState
		from    []types.AppState
		ok      bool
		want    types.AppState
		changes int
	}{
		{"active to speaking", types.StateActive, types.StateSpeaking, listening, true, types.StateSpeaking, 1},
		{"auto paused to speaking", types.StateAutoPaused, types.StateSpeaking, listening, true, types.StateSpeaking, 1},
		{"paused is kept", types.StatePaused, types.StateSpeaking, listening, false, types.StatePaused, 0},
		{"mic conflict is kept", types.StateMicConflict, types.StateSpeaking, listening, false, types.StateMicConflict, 0},
		{"already there", types.StateSpeaking, types.StateSpeaking, []types.AppState{types.StateSpeaking}, true, types.StateSpeaking, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStateMachine(tt.current)
			changes := recordTransitions(m)

			if ok := m.Transition(tt.to, tt.from...); ok != tt.ok {
				t.Fatalf("Transition() = %v, want %v", ok, tt.ok)
			}
			if got := m.Get(); got != tt.want {
				t.Fatalf("Get() = %v, want %v", got, tt.want)
			}
			if n := len(changes()); n != tt.changes {
				t.Fatalf("observed %d changes, want %d", n, tt.changes)
			}
		})
	}
}

// Active -> Paused -> Active keeps the Active classification.
func TestStateMachine_ToggleRoundTrip(t *testing.T) {
	m := NewStateMachine(types.StateActive)
	orig := m.Get()

	if got := m.TogglePause(); got.IconColor() != types.ColorRed {
		t.Fatalf("paused icon = %v, want %v", got.IconColor(), types.ColorRed)
	}
	got := m.TogglePause()
	if got != orig {
		t.Fatalf("after round trip state = %v, want %v", got, orig)
	}
	if got.IconColor() != orig.IconColor() || got.IsListening() != orig.IsListening() ||
		got.IsTranscribing() != orig.IsTranscribing() {
		t.Fatalf("classification changed after round trip: %v vs %v", got, orig)
	}
}

func TestStateMachine_Concurrent(t *testing.T) {
	m := NewStateMachine(types.StateActive)
	states := []types.AppState{
		types.StateActive, types.StateSpeaking, types.StateAutoPaused,
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for j := range 100 {
				m.Set(states[(i+j)%len(states)])
				_ = m.Get()
			}
		})
	}
	wg.Wait()

	switch m.Get() {
	case types.StateActive, types.StateSpeaking, types.StateAutoPaused:
	default:
		t.Fatalf("unexpected final state %v", m.Get())
	}
}
