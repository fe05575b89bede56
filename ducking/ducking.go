// Package ducking lowers other applications' playback while the user
// dictates and puts it back afterwards. The platform volume control is
// supplied as a Backend.
package ducking

import (
	"fmt"
	"log/slog"
	"sync"
)

// Backend reads and writes the output volume in [0, 1].
type Backend interface {
	Volume() (float64, error)
	SetVolume(v float64) error
}

// Ducker lowers the volume to a fixed level on Duck and restores the level it
// found on Restore. Duck and Restore are idempotent.
type Ducker struct {
	backend Backend
	volume  float64

	mu     sync.Mutex
	ducked bool
	saved  float64
}

// New returns a Ducker that lowers to volume through backend. A nil backend
// makes every call a no-op.
func New(volume float64, backend Backend) (*Ducker, error) {
	if volume < 0 || volume > 1 {
		return nil, fmt.Errorf("ducking: volume %v out of range [0, 1]", volume)
	}
	return &Ducker{backend: backend, volume: volume}, nil
}

// SetVolume changes the duck level used by the next Duck.
func (d *Ducker) SetVolume(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = min(max(v, 0), 1)
}

// Ducked reports whether the volume is currently lowered.
func (d *Ducker) Ducked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ducked
}

func (d *Ducker) Duck() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ducked || d.backend == nil {
		return nil
	}

	cur, err := d.backend.Volume()
	if err != nil {
		return fmt.Errorf("read volume: %w", err)
	}
	d.saved = cur
	d.ducked = true

	// Never raise the volume.
	if cur <= d.volume {
		return nil
	}
	if err := d.backend.SetVolume(d.volume); err != nil {
		d.ducked = false
		return fmt.Errorf("lower volume: %w", err)
	}
	slog.Debug("volume ducked", "from", cur, "to", d.volume)
	return nil
}

func (d *Ducker) Restore() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ducked {
		return nil
	}
	d.ducked = false

	if err := d.backend.SetVolume(d.saved); err != nil {
		return fmt.Errorf("restore volume: %w", err)
	}
	slog.Debug("volume restored", "to", d.saved)
	return nil
}
