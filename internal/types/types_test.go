package types

import "testing"

func TestAppStateClassification(t *testing.T) {
	tests := []struct {
		state        AppState
		wantColor    IconColor
		transcribing bool
		listening    bool
	}{
		{StateActive, ColorGrey, false, true},
		{StatePaused, ColorRed, false, false},
		{StateAutoPaused, ColorGrey, false, false},
		{StateSpeaking, ColorBlue, true, true},
		{StateMicConflict, ColorRed, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IconColor(); got != tt.wantColor {
				t.Errorf("IconColor() = %v, want %v", got, tt.wantColor)
			}
			if got := tt.state.IsTranscribing(); got != tt.transcribing {
				t.Errorf("IsTranscribing() = %v, want %v", got, tt.transcribing)
			}
			if got := tt.state.IsListening(); got != tt.listening {
				t.Errorf("IsListening() = %v, want %v", got, tt.listening)
			}
		})
	}
}

func TestParseAppState(t *testing.T) {
	for _, s := range []AppState{StateActive, StatePaused, StateAutoPaused, StateSpeaking, StateMicConflict} {
		got, err := ParseAppState(s.String())
		if err != nil {
			t.Fatalf("ParseAppState(%q) error: %v", s, err)
		}
		if got != s {
			t.Fatalf("ParseAppState(%q) = %v, want %v", s, got, s)
		}
	}

	if _, err := ParseAppState("sleeping"); err == nil {
		t.Fatal("expected error for unknown state")
	}
	if got := AppState(42).String(); got != "AppState(42)" {
		t.Fatalf("String() = %q, want AppState(42)", got)
	}
}

func TestIconColorRGBA(t *testing.T) {
	tests := []struct {
		color   IconColor
		r, g, b uint8
	}{
		{ColorGrey, 128, 128, 128},
		{ColorBlue, 0, 120, 255},
		{ColorRed, 220, 50, 50},
	}
	for _, tt := range tests {
		c := tt.color.RGBA()
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("%s.RGBA() = %v, want {%d %d %d 255}", tt.color, c, tt.r, tt.g, tt.b)
		}
	}
}
