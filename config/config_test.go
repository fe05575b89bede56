package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoadFile_CreatesDefault(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	path := filepath.Join(t.TempDir(), "dictation", "config.json")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	want := Default()
	if cfg.Deepgram != want.Deepgram || cfg.Audio != want.Audio || cfg.VAD != want.VAD || cfg.Hotkeys != want.Hotkeys {
		t.Errorf("LoadFile = %+v, want defaults %+v", cfg, want)
	}
	if cfg.File() != path {
		t.Errorf("File() = %q, want %q", cfg.File(), path)
	}

	// Defaults have no key and must not validate.
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Validate = %v, want ErrMissingAPIKey", err)
	}
	if !strings.Contains(cfg.Validate().Error(), path) {
		t.Errorf("error %q does not name the config file", cfg.Validate())
	}
}

func TestLoadFile_FillsMissingFields(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, map[string]any{
		"deepgram": map[string]any{"api_key": "k", "language": "de"},
		"audio":    map[string]any{"duck_volume": 0},
		"hotkeys":  map[string]any{"toggle_pause": ""},
	})

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"api key", cfg.Deepgram.APIKey, "k"},
		{"language", cfg.Deepgram.Language, "de"},
		{"model", cfg.Deepgram.Model, "nova-2"},
		{"endpoint", cfg.Deepgram.Endpoint, "wss://api.deepgram.com/v1/listen"},
		{"silence", cfg.Audio.SilenceThresholdMS, 3000},
		{"duck volume kept at zero", cfg.Audio.DuckVolume, 0.0},
		{"energy", cfg.VAD.EnergyThreshold, 0.02},
		{"toggle hotkey disabled", cfg.Hotkeys.TogglePause, ""},
		{"language hotkey default", cfg.Hotkeys.SwitchLanguage, "ctrl+alt+l"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile succeeded on malformed file")
	}
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, path, map[string]any{
		"deepgram": map[string]any{"api_key": "from-file"},
	})
	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.SessionConfig().APIKey; got != "from-env" {
		t.Errorf("session key = %q, want from-env", got)
	}

	// The override is never persisted.
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIKey, "")
	again, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.APIKey(); got != "from-file" {
		t.Errorf("saved key = %q, want from-file", got)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing key", func(c *Config) { c.Deepgram.APIKey = "" }, true},
		{"bad language", func(c *Config) { c.Deepgram.Language = "not a tag!" }, true},
		{"regional language", func(c *Config) { c.Deepgram.Language = "en-US" }, false},
		{"empty model", func(c *Config) { c.Deepgram.Model = "" }, true},
		{"duck volume negative", func(c *Config) { c.Audio.DuckVolume = -0.1 }, true},
		{"duck volume above one", func(c *Config) { c.Audio.DuckVolume = 1.5 }, true},
		{"duck volume mute", func(c *Config) { c.Audio.DuckVolume = 0 }, false},
		{"zero silence", func(c *Config) { c.Audio.SilenceThresholdMS = 0 }, true},
		{"zero energy", func(c *Config) { c.VAD.EnergyThreshold = 0 }, true},
		{"energy at full scale", func(c *Config) { c.VAD.EnergyThreshold = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Deepgram.APIKey = "k"
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToggleLanguage(t *testing.T) {
	tests := []struct {
		from, want string
	}{
		{"en", "de"},
		{"de", "en"},
		{"fr", "en"},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Deepgram.Language = tt.from
		if got := cfg.ToggleLanguage(); got != tt.want {
			t.Errorf("ToggleLanguage from %q = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestSessionConfig(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	cfg := Default()
	cfg.Deepgram.APIKey = "k"
	cfg.Audio.SilenceThresholdMS = 1500

	sc := cfg.SessionConfig()
	if sc.APIKey != "k" || sc.Language != "en" || sc.Model != "nova-2" {
		t.Errorf("SessionConfig = %+v", sc)
	}
	if sc.SilenceThreshold != 1500*time.Millisecond {
		t.Errorf("SilenceThreshold = %v, want 1.5s", sc.SilenceThreshold)
	}
	if sc.EnergyThreshold != 0.02 || sc.DuckVolume != 0.2 {
		t.Errorf("thresholds = %v/%v, want 0.02/0.2", sc.EnergyThreshold, sc.DuckVolume)
	}
}
