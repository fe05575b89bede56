// Package app wires the dictation pipeline to the microphone, the
// transcription service, global hotkeys and the metrics endpoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.aimuz.me/dictation/audiocapture"
	"go.aimuz.me/dictation/config"
	"go.aimuz.me/dictation/dictation"
	"go.aimuz.me/dictation/dictation/deepgram"
	"go.aimuz.me/dictation/ducking"
	"go.aimuz.me/dictation/hotkey"
	"go.aimuz.me/dictation/internal/metrics"
	"go.aimuz.me/dictation/internal/queue"
	"go.aimuz.me/dictation/internal/types"
	"go.aimuz.me/dictation/langdetect"
)

// Options configures a Service.
type Options struct {
	ConfigPath  string    // Required
	MetricsAddr string    // Empty disables the metrics endpoint
	Output      io.Writer // Transcripts; os.Stdout when nil
	Status      io.Writer // State changes; os.Stderr when nil
	Version     string

	// Volume control used for ducking; nil disables ducking.
	DuckBackend ducking.Backend
}

// Service runs the dictation daemon.
// This struct focuses on wiring; the pipeline lives in package dictation.
type Service struct {
	opts     Options
	store    *config.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	chunks    *queue.Queue[audiocapture.Chunk]
	audio     AudioAdapter
	sessions  *dictation.SessionManager
	ducker    *ducking.Ducker
	dictation *dictation.Service
	hotkey    *hotkey.HotkeyManager
}

// New loads and validates the configuration and builds the pipeline. Nothing
// is started until Run.
func New(opts Options) (*Service, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}

	store, err := config.NewStore(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := store.Config()

	s := &Service{
		opts:     opts,
		store:    store,
		registry: prometheus.NewRegistry(),
		chunks:   queue.New[audiocapture.Chunk](64),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = metrics.New(s.registry)

	s.ducker, err = ducking.New(cfg.Audio.DuckVolume, opts.DuckBackend)
	if err != nil {
		return nil, err
	}

	client := deepgram.NewClient()
	sink := NewTranscriptSink(
		dictation.NewWriterSink(opts.Output),
		newDetector(),
		func() string { return store.Snapshot().Language },
		s.metrics,
	)
	s.sessions = dictation.NewSessionManager(dialer(client), sink, dictation.WithSessionMetrics(s.metrics))

	state := dictation.NewStateMachine(types.StateActive)
	state.OnChange(NewStatusPrinter(opts.Status).OnChange)
	state.OnChange(func(from, to types.AppState) {
		s.metrics.StateChanged(from.String(), to.String())
	})
	s.metrics.StateChanged(types.StateActive.String(), types.StateActive.String())

	s.dictation, err = dictation.NewService(dictation.Options{
		Chunks:   s.chunks,
		Config:   store,
		State:    state,
		Sessions: s.sessions,
		Ducker:   s.ducker,
		Language: store,
		Metrics:  s.metrics,
	})
	if err != nil {
		return nil, err
	}

	store.OnReload(func(c *config.Config) {
		s.ducker.SetVolume(c.Audio.DuckVolume)
	})

	slog.Info("dictation configured",
		"version", opts.Version,
		"config", opts.ConfigPath,
		"language", cfg.Deepgram.Language,
		"model", cfg.Deepgram.Model)
	return s, nil
}

// Dispatch sends a command to the pipeline.
func (s *Service) Dispatch(cmd dictation.Command) bool {
	return s.dictation.Dispatch(cmd)
}

// Run captures audio and dictates until ctx is done or a quit command is
// handled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.audio.Start(func(c audiocapture.Chunk) { s.chunks.Push(c) }); err != nil {
		if errors.Is(err, audiocapture.ErrNoDevice) {
			return fmt.Errorf("%w: connect a microphone and try again", err)
		}
		return err
	}
	defer s.Shutdown()

	s.setupHotkey()

	go func() {
		if err := s.store.Watch(ctx); err != nil {
			slog.Warn("config watch stopped", "error", err)
		}
	}()

	if s.opts.MetricsAddr != "" {
		stop := s.serveMetrics(s.opts.MetricsAddr)
		defer stop()
	}

	slog.Info("ready, start speaking", "hotkeys", s.store.Config().Hotkeys)
	return s.dictation.Run(ctx)
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if err := s.audio.Stop(); err != nil {
		slog.Error("stop audio capture", "error", err)
	}
	s.chunks.CloseWrite()
	s.sessions.Close()
	if err := s.ducker.Restore(); err != nil {
		slog.Error("restore volume", "error", err)
	}
}

func (s *Service) setupHotkey() {
	keys := s.store.Config().Hotkeys
	s.hotkey = hotkey.NewHotkeyManager(
		hotkey.Binding{
			Combo:  keys.TogglePause,
			Action: func() { s.Dispatch(dictation.CommandTogglePause) },
		},
		hotkey.Binding{
			Combo:  keys.SwitchLanguage,
			Action: func() { s.Dispatch(dictation.CommandSwitchLanguage) },
		},
	)

	s.hotkey.SetStatusCallback(func(granted bool) {
		if granted {
			slog.Info("keyboard hook installed")
		} else {
			slog.Warn("keyboard hook unavailable")
		}
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func (s *Service) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(s.registry))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown", "error", err)
		}
	}
}

// dialer adapts the websocket client to the session manager.
func dialer(c *deepgram.Client) dictation.Dialer {
	return func(ctx context.Context, cfg types.SessionConfig) (dictation.Stream, error) {
		conn, err := c.Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// newDetector builds the detector for the toggle languages. Detection is a
// hint only, so a failure disables it.
func newDetector() *langdetect.Detector {
	d, err := langdetect.New("en", "de")
	if err != nil {
		slog.Warn("language detection disabled", "error", err)
		return nil
	}
	return d
}
