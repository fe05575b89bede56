package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.aimuz.me/dictation/internal/types"
)

// Status labels shown for each state, in place of the tray tooltip.
var stateLabels = map[types.AppState]string{
	types.StateActive:      "listening",
	types.StatePaused:      "paused",
	types.StateAutoPaused:  "waiting for speech",
	types.StateSpeaking:    "dictating",
	types.StateMicConflict: "microphone in use by another application",
}

// StatusPrinter writes one line per state change. It stands in for the tray
// icon: the icon colour is printed next to the state.
type StatusPrinter struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewStatusPrinter returns a StatusPrinter writing to w.
func NewStatusPrinter(w io.Writer) *StatusPrinter {
	return &StatusPrinter{w: w, now: time.Now}
}

// OnChange has the signature of a state machine observer.
func (p *StatusPrinter) OnChange(_, to types.AppState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s [%s] %s\n", p.now().Format(time.TimeOnly), to.IconColor(), stateLabels[to])
}
