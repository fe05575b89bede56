package dictation

import (
	"math"
	"time"

	"go.aimuz.me/dictation/audiocapture"
)

// Event is the detector's classification of one chunk.
type Event int

const (
	EventSilence         Event = iota // Not speaking
	EventSpeechStarted                // First speech chunk after silence
	EventSpeaking                     // Speech, or silence inside the grace window
	EventSilenceDetected              // Grace window elapsed, utterance over
)

func (e Event) String() string {
	switch e {
	case EventSilence:
		return "silence"
	case EventSpeechStarted:
		return "speech_started"
	case EventSpeaking:
		return "speaking"
	case EventSilenceDetected:
		return "silence_detected"
	default:
		return "unknown"
	}
}

// VAD (Voice Activity Detector) classifies chunks as speech or silence by
// their RMS energy and reports speech/silence transitions.
//
// A VAD is owned by a single goroutine.
type VAD struct {
	threshold float64       // RMS above which a chunk is speech
	silence   time.Duration // Silence after speech that ends an utterance
	now       func() time.Time

	speaking   bool
	lastSpeech time.Time
}

// VADOption configures a VAD.
type VADOption func(*VAD)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) VADOption {
	return func(v *VAD) { v.now = now }
}

// NewVAD creates a detector with the given energy threshold and silence
// duration.
func NewVAD(threshold float64, silence time.Duration, opts ...VADOption) *VAD {
	v := &VAD{
		threshold: threshold,
		silence:   silence,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Process classifies chunk and advances the detector state.
func (v *VAD) Process(chunk audiocapture.Chunk) Event {
	now := v.now()

	if RMS(chunk) > v.threshold {
		v.lastSpeech = now
		if !v.speaking {
			v.speaking = true
			return EventSpeechStarted
		}
		return EventSpeaking
	}

	if !v.speaking {
		return EventSilence
	}
	if now.Sub(v.lastSpeech) > v.silence {
		v.speaking = false
		return EventSilenceDetected
	}
	return EventSpeaking
}

// Reset clears the detector state without emitting an event.
func (v *VAD) Reset() {
	v.speaking = false
	v.lastSpeech = time.Time{}
}

// Speaking reports whether an utterance is in progress.
func (v *VAD) Speaking() bool {
	return v.speaking
}

// RMS returns the root mean square of the samples normalized to [-1, 1].
// An empty chunk has zero energy.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		x := float64(s) / math.MaxInt16
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(samples)))
}
