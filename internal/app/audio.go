package app

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.aimuz.me/dictation/audiocapture"
)

// newCapturer is replaced in tests.
var newCapturer = audiocapture.New

// AudioAdapter manages microphone capture with proper synchronization.
type AudioAdapter struct {
	mu       sync.Mutex
	capture  audiocapture.Capturer
	stopChan chan struct{}
	chunks   atomic.Int64
}

// Start begins capturing and hands every chunk to push. push runs on the
// audio callback and must not block.
func (aa *AudioAdapter) Start(push func(audiocapture.Chunk)) error {
	aa.mu.Lock()
	defer aa.mu.Unlock()

	if aa.capture != nil {
		return fmt.Errorf("audio capture already running")
	}

	cap, err := newCapturer(audiocapture.DefaultConfig())
	if err != nil {
		return fmt.Errorf("create audio capture: %w", err)
	}

	stop := make(chan struct{})
	if err := cap.Start(func(c audiocapture.Chunk) {
		select {
		case <-stop:
			return
		default:
		}
		aa.chunks.Add(1)
		push(c)
	}); err != nil {
		return fmt.Errorf("start audio capture: %w", err)
	}

	aa.stopChan = stop
	aa.capture = cap
	slog.Info("audio capture started")
	return nil
}

// Chunks returns the number of chunks captured so far.
func (aa *AudioAdapter) Chunks() int64 {
	return aa.chunks.Load()
}

// Stop stops audio capture.
func (aa *AudioAdapter) Stop() error {
	aa.mu.Lock()
	defer aa.mu.Unlock()

	if aa.capture == nil {
		return nil
	}

	if aa.stopChan != nil {
		close(aa.stopChan)
		aa.stopChan = nil
	}

	err := aa.capture.Stop()
	aa.capture = nil

	slog.Info("audio capture stopped", "chunks", aa.chunks.Load())
	return err
}
