// Package audiocapture captures microphone audio as fixed-size mono chunks.
package audiocapture

import "errors"

const (
	// SampleRate is the rate the transcription stream is declared with.
	// Devices are opened at their native rate; see Capturer.
	SampleRate = 16000

	// ChunkSize is the number of mono samples per chunk (100 ms at SampleRate).
	ChunkSize = 1600
)

var (
	// ErrRunning is returned by Start when capture is already running.
	ErrRunning = errors.New("audiocapture: already running")

	// ErrUnsupported is returned by New when the build has no capture backend.
	ErrUnsupported = errors.New("audiocapture: not supported on this build")

	// ErrNoDevice is returned by Start when no capture device exists.
	ErrNoDevice = errors.New("audiocapture: no input device found")

	// ErrUnsupportedFormat is returned when the device's native sample format
	// cannot be decoded.
	ErrUnsupportedFormat = errors.New("audiocapture: unsupported sample format")
)

// Chunk is a fixed-size, time-ordered slice of mono 16-bit samples.
// Receivers must not modify it.
type Chunk []int16

// ChunkHandler receives chunks on the device's real-time thread.
// It must not block.
type ChunkHandler func(Chunk)

// Capturer captures audio from the default input device.
//
// Start opens the device with its native sample format, channel count and
// sample rate, and calls handler with every full chunk until Stop. A partial
// chunk pending at Stop is discarded.
type Capturer interface {
	Start(handler ChunkHandler) error
	Stop() error
}

// DeviceInfo describes a capture device.
type DeviceInfo struct {
	Name    string
	Default bool
}

// Config configures a Capturer.
type Config struct {
	ChunkSize int // Mono samples per chunk
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize: ChunkSize,
	}
}
