//go:build cgo

package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// HotkeyManager listens for global key combinations and runs their actions.
// Actions run on the hook goroutine and must not block.
type HotkeyManager struct {
	bindings []Binding

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	statusCb func(granted bool)
}

// NewHotkeyManager creates a manager for bindings. Bindings with an empty
// combination are skipped.
func NewHotkeyManager(bindings ...Binding) *HotkeyManager {
	return &HotkeyManager{bindings: bindings}
}

// SetStatusCallback is called with whether the keyboard hook could be
// installed.
func (m *HotkeyManager) SetStatusCallback(fn func(granted bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCb = fn
}

// Start parses every binding and installs the keyboard hook.
func (m *HotkeyManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	combos := make([]Combo, 0, len(m.bindings))
	actions := make([]func(), 0, len(m.bindings))
	for _, b := range m.bindings {
		if b.Combo == "" {
			continue
		}
		c, err := ParseCombo(b.Combo)
		if err != nil {
			return err
		}
		combos = append(combos, c)
		actions = append(actions, b.Action)
	}
	if len(combos) == 0 {
		return nil
	}

	for i, c := range combos {
		action := actions[i]
		hook.Register(hook.KeyDown, c.Keys(), func(hook.Event) {
			slog.Debug("hotkey pressed", "combo", c.String())
			action()
		})
		slog.Info("hotkey registered", "combo", c.String())
	}

	events := hook.Start()
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		<-hook.Process(events)
	}(m.done)

	m.running = true
	if m.statusCb != nil {
		m.statusCb(true)
	}
	return nil
}

// Stop removes the keyboard hook.
func (m *HotkeyManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	hook.End()
	<-m.done
	m.running = false
}
