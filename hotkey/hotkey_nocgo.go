//go:build !cgo

package hotkey

// HotkeyManager is unavailable without cgo.
type HotkeyManager struct {
	bindings []Binding
	statusCb func(granted bool)
}

func NewHotkeyManager(bindings ...Binding) *HotkeyManager {
	return &HotkeyManager{bindings: bindings}
}

func (m *HotkeyManager) SetStatusCallback(fn func(granted bool)) {
	m.statusCb = fn
}

// Start validates the bindings, then reports ErrUnsupported.
func (m *HotkeyManager) Start() error {
	for _, b := range m.bindings {
		if b.Combo == "" {
			continue
		}
		if _, err := ParseCombo(b.Combo); err != nil {
			return err
		}
	}
	if m.statusCb != nil {
		m.statusCb(false)
	}
	return ErrUnsupported
}

func (m *HotkeyManager) Stop() {}
