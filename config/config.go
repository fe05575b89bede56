// Package config handles application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.aimuz.me/dictation/dictation/deepgram"
	"go.aimuz.me/dictation/internal/types"
	"golang.org/x/text/language"
)

const (
	appName        = "dictation"
	configFileName = "config.json"

	// EnvAPIKey overrides the API key stored in the file.
	EnvAPIKey = "DEEPGRAM_API_KEY"
)

// ErrMissingAPIKey is returned by Validate when no API key is configured.
var ErrMissingAPIKey = errors.New("API key not set")

// Config represents the application configuration.
type Config struct {
	Deepgram DeepgramConfig `json:"deepgram"`
	Audio    AudioConfig    `json:"audio"`
	VAD      VADConfig      `json:"vad"`
	Hotkeys  HotkeyConfig   `json:"hotkeys"`

	path   string
	envKey string // from EnvAPIKey, never saved
}

// DeepgramConfig configures the transcription service.
type DeepgramConfig struct {
	APIKey   string `json:"api_key"`
	Language string `json:"language"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint,omitempty"`
}

// AudioConfig configures utterance segmentation and ducking.
type AudioConfig struct {
	SilenceThresholdMS int     `json:"silence_threshold_ms"`
	DuckVolume         float64 `json:"duck_volume"`
}

// VADConfig configures the voice activity detector.
type VADConfig struct {
	EnergyThreshold float64 `json:"energy_threshold"`
}

// HotkeyConfig holds key combinations such as "ctrl+alt+d".
// An empty combination disables the hotkey.
type HotkeyConfig struct {
	TogglePause    string `json:"toggle_pause"`
	SwitchLanguage string `json:"switch_language"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Deepgram: DeepgramConfig{
			Language: "en",
			Model:    "nova-2",
			Endpoint: deepgram.DefaultEndpoint,
		},
		Audio: AudioConfig{
			SilenceThresholdMS: 3000,
			DuckVolume:         0.2,
		},
		VAD: VADConfig{
			EnergyThreshold: 0.02,
		},
		Hotkeys: HotkeyConfig{
			TogglePause:    "ctrl+alt+d",
			SwitchLanguage: "ctrl+alt+l",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. A missing file is created with the
// default configuration. The result is not validated.
func LoadFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		slog.Info("default config written", "path", path)
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

// readFile loads an existing config file.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	cfg.applyEnv()
	return cfg, nil
}

// parse decodes data over the defaults, so absent keys keep their default.
func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save persists the configuration to its file.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Owner-only: the file holds an API key.
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// APIKey returns the effective API key: the environment override if set,
// otherwise the stored key.
func (c *Config) APIKey() string {
	if c.envKey != "" {
		return c.envKey
	}
	return c.Deepgram.APIKey
}

// File returns the path the configuration was loaded from.
func (c *Config) File() string {
	return c.path
}

// Validate checks that the configuration can drive a dictation session.
func (c *Config) Validate() error {
	if c.APIKey() == "" {
		return fmt.Errorf("%w, edit %s or set %s", ErrMissingAPIKey, c.path, EnvAPIKey)
	}
	if _, err := language.Parse(c.Deepgram.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", c.Deepgram.Language, err)
	}
	if c.Deepgram.Model == "" {
		return errors.New("model required")
	}
	if c.Audio.DuckVolume < 0 || c.Audio.DuckVolume > 1 {
		return fmt.Errorf("duck_volume %v out of range [0, 1]", c.Audio.DuckVolume)
	}
	if c.Audio.SilenceThresholdMS <= 0 {
		return fmt.Errorf("silence_threshold_ms must be positive, got %d", c.Audio.SilenceThresholdMS)
	}
	if c.VAD.EnergyThreshold <= 0 || c.VAD.EnergyThreshold >= 1 {
		return fmt.Errorf("energy_threshold %v out of range (0, 1)", c.VAD.EnergyThreshold)
	}
	return nil
}

// ToggleLanguage switches between English and German. Any language other
// than English switches to English.
func (c *Config) ToggleLanguage() string {
	if c.Deepgram.Language == "en" {
		c.Deepgram.Language = "de"
	} else {
		c.Deepgram.Language = "en"
	}
	return c.Deepgram.Language
}

// SessionConfig returns the settings snapshot used by one dictation session.
func (c *Config) SessionConfig() types.SessionConfig {
	return types.SessionConfig{
		APIKey:           c.APIKey(),
		Language:         c.Deepgram.Language,
		Model:            c.Deepgram.Model,
		Endpoint:         c.Deepgram.Endpoint,
		EnergyThreshold:  c.VAD.EnergyThreshold,
		SilenceThreshold: time.Duration(c.Audio.SilenceThresholdMS) * time.Millisecond,
		DuckVolume:       c.Audio.DuckVolume,
	}
}

// Helper functions

func (c *Config) applyDefaults() {
	d := Default()
	if c.Deepgram.Language == "" {
		c.Deepgram.Language = d.Deepgram.Language
	}
	if c.Deepgram.Model == "" {
		c.Deepgram.Model = d.Deepgram.Model
	}
	if c.Deepgram.Endpoint == "" {
		c.Deepgram.Endpoint = d.Deepgram.Endpoint
	}
	if c.Audio.SilenceThresholdMS == 0 {
		c.Audio.SilenceThresholdMS = d.Audio.SilenceThresholdMS
	}
	if c.VAD.EnergyThreshold == 0 {
		c.VAD.EnergyThreshold = d.VAD.EnergyThreshold
	}
}

func (c *Config) applyEnv() {
	c.envKey = os.Getenv(EnvAPIKey)
}
