// Package dictation turns microphone chunks into typed text: it detects
// utterances, streams each one to a transcription service, and keeps the
// shared application state in step.
package dictation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.aimuz.me/dictation/audiocapture"
	"go.aimuz.me/dictation/internal/metrics"
	"go.aimuz.me/dictation/internal/queue"
	"go.aimuz.me/dictation/internal/types"
)

// ConfigProvider supplies the settings snapshot read at VAD construction and
// at each session start.
type ConfigProvider interface {
	Snapshot() types.SessionConfig
}

// Ducker lowers other applications' playback while the user speaks.
// Both methods are idempotent.
type Ducker interface {
	Duck() error
	Restore() error
}

// Options holds the collaborators of a Service.
type Options struct {
	Chunks   *queue.Queue[audiocapture.Chunk] // Required
	Config   ConfigProvider                   // Required
	State    *StateMachine                    // Required
	Sessions *SessionManager                  // Required

	Ducker    Ducker           // Optional, no ducking when nil
	Language  LanguageSwitcher // Optional
	Autostart Autostarter      // Optional
	Metrics   *metrics.Metrics // Optional

	// VADOptions are passed to the detector, e.g. WithClock in tests.
	VADOptions []VADOption
}

// Service is the orchestrator. It consumes audio chunks strictly in arrival
// order on the goroutine that calls Run.
type Service struct {
	chunks    *queue.Queue[audiocapture.Chunk]
	config    ConfigProvider
	state     *StateMachine
	sessions  *SessionManager
	ducker    Ducker
	language  LanguageSwitcher
	autostart Autostarter
	metrics   *metrics.Metrics
	vadOpts   []VADOption

	vad            *VAD
	commands       chan Command
	utteranceStart time.Time
}

// NewService creates a Service.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.Chunks == nil:
		return nil, errors.New("dictation: chunk queue required")
	case opts.Config == nil:
		return nil, errors.New("dictation: config provider required")
	case opts.State == nil:
		return nil, errors.New("dictation: state machine required")
	case opts.Sessions == nil:
		return nil, errors.New("dictation: session manager required")
	}

	ducker := opts.Ducker
	if ducker == nil {
		ducker = nopDucker{}
	}

	return &Service{
		chunks:    opts.Chunks,
		config:    opts.Config,
		state:     opts.State,
		sessions:  opts.Sessions,
		ducker:    ducker,
		language:  opts.Language,
		autostart: opts.Autostart,
		metrics:   opts.Metrics,
		vadOpts:   opts.VADOptions,
		commands:  make(chan Command, 16),
	}, nil
}

// Dispatch queues cmd for Run without blocking. It reports false when the
// command buffer is full and cmd was dropped.
func (s *Service) Dispatch(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		slog.Warn("command dropped", "command", cmd)
		return false
	}
}

// State returns the shared state machine, for status observers.
func (s *Service) State() *StateMachine {
	return s.state
}

// Run processes chunks and commands until ctx is done, CommandQuit is
// handled, or the chunk queue is closed and drained. The live session, if
// any, is ended before Run returns. Quit and end of audio return nil.
func (s *Service) Run(ctx context.Context) error {
	cfg := s.resetVAD()
	defer s.shutdown()

	slog.Info("dictation started",
		"energy_threshold", cfg.EnergyThreshold,
		"silence_threshold", cfg.SilenceThreshold,
		"state", s.state.Get())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Commands go first so a pause applies to the very next chunk.
		select {
		case cmd := <-s.commands:
			if s.handleCommand(cmd) {
				return nil
			}
			continue
		default:
		}

		chunk, ok, err := s.chunks.TryPop()
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("audio stream ended")
				return nil
			}
			return fmt.Errorf("read chunk: %w", err)
		}
		if ok {
			s.process(ctx, chunk)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-s.commands:
			if s.handleCommand(cmd) {
				return nil
			}
		case <-s.chunks.Ready():
		}
	}
}

// process runs one chunk through the state gate and the detector.
func (s *Service) process(ctx context.Context, chunk audiocapture.Chunk) {
	switch s.state.Get() {
	case types.StatePaused, types.StateMicConflict:
		s.metrics.ChunkProcessed("drained")
		if s.sessions.Active() {
			// Paused mid-utterance: close it, keep the user's state.
			s.endUtterance("paused")
		}
		return
	}

	s.metrics.ChunkProcessed("vad")
	event := s.vad.Process(chunk)
	s.metrics.Event(event.String())

	switch event {
	case EventSpeechStarted:
		if !s.state.Transition(types.StateSpeaking, types.StateActive, types.StateAutoPaused) {
			// Paused while the chunk was in flight.
			slog.Debug("speech ignored", "state", s.state.Get())
			s.resetVAD()
			return
		}
		if err := s.ducker.Duck(); err != nil {
			slog.Warn("duck playback", "error", err)
		}
		s.utteranceStart = time.Now()
		s.sessions.Start(ctx, s.config.Snapshot(), chunk)

	case EventSpeaking:
		if s.state.Get() == types.StateSpeaking {
			s.sessions.Forward(chunk)
		}

	case EventSilenceDetected:
		s.state.Transition(types.StateAutoPaused, types.StateSpeaking)
		s.endUtterance("silence")

	case EventSilence:
	}
}

// endUtterance restores playback, ends the session and resets the detector.
func (s *Service) endUtterance(reason string) {
	if err := s.ducker.Restore(); err != nil {
		slog.Warn("restore playback", "error", err)
	}
	s.sessions.End()
	s.resetVAD()

	d := time.Since(s.utteranceStart)
	slog.Info("utterance ended", "reason", reason, "duration", d)
	s.metrics.UtteranceEnded(reason, d)
}

// resetVAD replaces the detector with a fresh one built from the current
// thresholds and returns the snapshot it used.
func (s *Service) resetVAD() types.SessionConfig {
	cfg := s.config.Snapshot()
	s.vad = NewVAD(cfg.EnergyThreshold, cfg.SilenceThreshold, s.vadOpts...)
	return cfg
}

// handleCommand applies cmd and reports whether Run should return.
func (s *Service) handleCommand(cmd Command) (quit bool) {
	slog.Debug("command received", "command", cmd)

	switch cmd {
	case CommandTogglePause:
		if s.state.TogglePause() == types.StatePaused && s.sessions.Active() {
			s.endUtterance("paused")
		}

	case CommandSwitchLanguage:
		if s.language == nil {
			slog.Warn("language switching not available")
			return false
		}
		lang, err := s.language.ToggleLanguage()
		if err != nil {
			slog.Error("switch language", "error", err)
			return false
		}
		slog.Info("language switched", "language", lang)

	case CommandToggleAutostart:
		if s.autostart == nil {
			slog.Warn("autostart not supported on this platform")
			return false
		}
		enabled, err := s.autostart.Enabled()
		if err != nil {
			slog.Error("read autostart", "error", err)
			return false
		}
		if err := s.autostart.SetEnabled(!enabled); err != nil {
			slog.Error("set autostart", "error", err)
			return false
		}
		slog.Info("autostart toggled", "enabled", !enabled)

	case CommandQuit:
		slog.Info("quit requested")
		return true

	default:
		slog.Warn("unknown command", "command", int(cmd))
	}
	return false
}

func (s *Service) shutdown() {
	if s.sessions.Active() {
		s.endUtterance("shutdown")
	} else if err := s.ducker.Restore(); err != nil {
		slog.Warn("restore playback", "error", err)
	}
	slog.Info("dictation stopped")
}

type nopDucker struct{}

func (nopDucker) Duck() error    { return nil }
func (nopDucker) Restore() error { return nil }
