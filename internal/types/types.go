// Package types provides shared type definitions for the application.
package types

import (
	"fmt"
	"image/color"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Application State
// ─────────────────────────────────────────────────────────────────────────────

// AppState is the dictation state shown to the user.
type AppState int

const (
	StateActive     AppState = iota // Listening, waiting for speech
	StatePaused                     // Paused by the user
	StateAutoPaused                 // Idle after an utterance ended
	StateSpeaking                   // Utterance in progress
	StateMicConflict                // Microphone taken by another application
)

var stateNames = [...]string{
	StateActive:      "active",
	StatePaused:      "paused",
	StateAutoPaused:  "auto_paused",
	StateSpeaking:    "speaking",
	StateMicConflict: "mic_conflict",
}

func (s AppState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("AppState(%d)", int(s))
	}
	return stateNames[s]
}

// ParseAppState parses the String form of a state.
func ParseAppState(name string) (AppState, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, name) {
			return AppState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown app state: %q", name)
}

// IconColor returns the status icon colour for the state.
func (s AppState) IconColor() IconColor {
	switch s {
	case StateSpeaking:
		return ColorBlue
	case StatePaused, StateMicConflict:
		return ColorRed
	default:
		return ColorGrey
	}
}

// IsTranscribing reports whether an utterance is being transcribed.
func (s AppState) IsTranscribing() bool {
	return s == StateSpeaking
}

// IsListening reports whether microphone audio reaches the detector.
func (s AppState) IsListening() bool {
	return s == StateActive || s == StateSpeaking
}

// IconColor is the colour of the status indicator.
type IconColor string

const (
	ColorGrey IconColor = "grey"
	ColorBlue IconColor = "blue"
	ColorRed  IconColor = "red"
)

// RGBA returns the colour used to draw the tray icon.
func (c IconColor) RGBA() color.RGBA {
	switch c {
	case ColorBlue:
		return color.RGBA{R: 0, G: 120, B: 255, A: 255}
	case ColorRed:
		return color.RGBA{R: 220, G: 50, B: 50, A: 255}
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Transcription Types
// ─────────────────────────────────────────────────────────────────────────────

// SessionConfig is an immutable snapshot of the settings one transcription
// session and one detector instance are built from.
type SessionConfig struct {
	APIKey           string
	Language         string
	Model            string
	Endpoint         string        // Streaming endpoint, e.g. wss://api.deepgram.com/v1/listen
	EnergyThreshold  float64       // RMS level above which a chunk counts as speech
	SilenceThreshold time.Duration // Silence after speech that ends an utterance
	DuckVolume       float64       // Playback volume of other apps while speaking, 0-1
}

// Transcript is one decoded recognition result.
type Transcript struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}
