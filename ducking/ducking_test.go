package ducking

import (
	"errors"
	"testing"
)

type fakeBackend struct {
	volume float64
	sets   []float64
	getErr error
	setErr error
}

func (f *fakeBackend) Volume() (float64, error) { return f.volume, f.getErr }

func (f *fakeBackend) SetVolume(v float64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.volume = v
	f.sets = append(f.sets, v)
	return nil
}

func TestDucker_DuckRestore(t *testing.T) {
	b := &fakeBackend{volume: 0.8}
	d, err := New(0.2, b)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Duck(); err != nil {
		t.Fatalf("Duck: %v", err)
	}
	if err := d.Duck(); err != nil {
		t.Fatalf("second Duck: %v", err)
	}
	if b.volume != 0.2 {
		t.Errorf("volume after duck = %v, want 0.2", b.volume)
	}
	if !d.Ducked() {
		t.Error("Ducked() = false after Duck")
	}

	if err := d.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := d.Restore(); err != nil {
		t.Fatalf("second Restore: %v", err)
	}
	if b.volume != 0.8 {
		t.Errorf("volume after restore = %v, want 0.8", b.volume)
	}
	if len(b.sets) != 2 {
		t.Errorf("SetVolume called %d times, want 2", len(b.sets))
	}
}

func TestDucker_NeverRaises(t *testing.T) {
	b := &fakeBackend{volume: 0.1}
	d, _ := New(0.2, b)

	if err := d.Duck(); err != nil {
		t.Fatal(err)
	}
	if b.volume != 0.1 {
		t.Errorf("volume = %v, want unchanged 0.1", b.volume)
	}
	if err := d.Restore(); err != nil {
		t.Fatal(err)
	}
	if b.volume != 0.1 {
		t.Errorf("volume after restore = %v, want 0.1", b.volume)
	}
}

func TestDucker_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("read", func(t *testing.T) {
		d, _ := New(0.2, &fakeBackend{getErr: boom})
		if err := d.Duck(); !errors.Is(err, boom) {
			t.Fatalf("Duck = %v, want %v", err, boom)
		}
		if d.Ducked() {
			t.Error("Ducked() = true after failed Duck")
		}
	})

	t.Run("write", func(t *testing.T) {
		d, _ := New(0.2, &fakeBackend{volume: 1, setErr: boom})
		if err := d.Duck(); !errors.Is(err, boom) {
			t.Fatalf("Duck = %v, want %v", err, boom)
		}
		if d.Ducked() {
			t.Error("Ducked() = true after failed Duck")
		}
		if err := d.Restore(); err != nil {
			t.Errorf("Restore after failed Duck = %v, want nil", err)
		}
	})
}

func TestDucker_NilBackend(t *testing.T) {
	d, err := New(0.2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Duck(); err != nil {
		t.Errorf("Duck = %v", err)
	}
	if err := d.Restore(); err != nil {
		t.Errorf("Restore = %v", err)
	}
}

func TestNew_VolumeRange(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1} {
		if _, err := New(v, nil); err == nil {
			t.Errorf("New(%v) succeeded, want error", v)
		}
	}
}
