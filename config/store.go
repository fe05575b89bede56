package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.aimuz.me/dictation/internal/types"
)

// Store holds the live configuration and hands out snapshots. It is safe for
// concurrent use.
type Store struct {
	path string

	mu       sync.RWMutex
	cfg      *Config
	onReload []func(*Config)
}

// NewStore loads path and validates the result.
func NewStore(path string) (*Store, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// Snapshot returns the session settings of the current configuration.
func (s *Store) Snapshot() types.SessionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.SessionConfig()
}

// ToggleLanguage switches the transcription language and persists it. The
// next session uses the new language.
func (s *Store) ToggleLanguage() (string, error) {
	s.mu.Lock()
	next := *s.cfg
	lang := next.ToggleLanguage()
	if err := next.Save(); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("save config: %w", err)
	}
	s.cfg = &next
	s.mu.Unlock()
	return lang, nil
}

// OnReload registers fn to be called with the new configuration after a
// successful Reload.
func (s *Store) OnReload(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload re-reads the file. An invalid file leaves the current configuration
// in place and returns the error.
func (s *Store) Reload() error {
	cfg, err := readFile(s.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	observers := s.onReload
	s.mu.Unlock()

	for _, fn := range observers {
		c := *cfg
		fn(&c)
	}
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. The directory is watched so editors that replace the file on save
// are followed.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config dir %q: %w", dir, err)
	}

	name := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				slog.Warn("config reload failed, keeping previous config", "path", s.path, "error", err)
				continue
			}
			slog.Info("config reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch config: %w", err)
		}
	}
}
