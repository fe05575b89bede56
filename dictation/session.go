package dictation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.aimuz.me/dictation/audiocapture"
	"go.aimuz.me/dictation/internal/metrics"
	"go.aimuz.me/dictation/internal/queue"
	"go.aimuz.me/dictation/internal/types"
)

// Stream is one open transcription connection.
//
// Send and Recv are called from different goroutines. Close must unblock a
// pending Recv and may be called more than once. Recv returns an error
// matching io.EOF when the remote closes normally.
type Stream interface {
	Send(samples []int16) error
	Recv() (types.Transcript, error)
	Close() error
}

// Dialer opens a Stream for one utterance.
type Dialer func(ctx context.Context, cfg types.SessionConfig) (Stream, error)

// SessionManager owns the transcription connection of the current utterance.
// There is at most one session at a time.
//
// Start, Forward and End are called from the orchestrator goroutine.
type SessionManager struct {
	dial    Dialer
	sink    TextSink
	metrics *metrics.Metrics

	mu      sync.Mutex
	current *session
}

type session struct {
	id      string
	queue   *queue.Queue[audiocapture.Chunk]
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithSessionMetrics records session counters in m.
func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(sm *SessionManager) { sm.metrics = m }
}

// NewSessionManager creates a SessionManager that opens streams with dial and
// delivers final transcripts to sink.
func NewSessionManager(dial Dialer, sink TextSink, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		dial: dial,
		sink: sink,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start ends any live session, then starts a new one with cfg. first is
// queued before the connection is dialed, so audio forwarded during the
// handshake is kept in order. It returns the session id.
func (m *SessionManager) Start(ctx context.Context, cfg types.SessionConfig, first audiocapture.Chunk) string {
	m.End()

	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		id:      uuid.NewString(),
		queue:   queue.New[audiocapture.Chunk](32),
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	s.queue.Push(first)

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	slog.Info("session started", "session", s.id, "model", cfg.Model, "language", cfg.Language)
	m.metrics.SessionStarted()

	go m.run(ctx, s, cfg)
	return s.id
}

// Forward queues chunk for the live session. It reports false when there is
// no session or the session has already failed; the chunk is dropped.
func (m *SessionManager) Forward(chunk audiocapture.Chunk) bool {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s == nil {
		return false
	}
	return s.queue.Push(chunk)
}

// End closes the live session's queue, cancels both loops and waits for them
// to exit. Audio not yet sent is discarded. End without a session is a no-op.
func (m *SessionManager) End() {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()

	if s == nil {
		return
	}

	s.queue.CloseWrite()
	s.cancel()
	<-s.done

	d := time.Since(s.started)
	slog.Info("session ended", "session", s.id, "duration", d)
	m.metrics.SessionEnded(d)
}

// Active reports whether a session has been started and not yet ended. A
// session whose dial or transport failed stays active until End.
func (m *SessionManager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Close ends the live session.
func (m *SessionManager) Close() {
	m.End()
}

func (m *SessionManager) run(ctx context.Context, s *session, cfg types.SessionConfig) {
	defer close(s.done)
	defer s.queue.CloseWithError(nil)

	stream, err := m.dial(ctx, cfg)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("open transcription stream", "session", s.id, "error", err)
			m.metrics.SessionFailed("dial")
		}
		return
	}

	// Cancellation closes the stream, which unblocks Recv and Send.
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer func() {
		stop()
		stream.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() { m.sendLoop(ctx, s, stream) })
	wg.Go(func() { m.receiveLoop(ctx, s, stream) })
	wg.Wait()
}

func (m *SessionManager) sendLoop(ctx context.Context, s *session, stream Stream) {
	for {
		if ctx.Err() != nil {
			return
		}
		chunk, err := s.queue.Pop(ctx)
		if err != nil {
			// io.EOF: the utterance is over. Anything else: torn down.
			return
		}
		if err := stream.Send(chunk); err != nil {
			if ctx.Err() == nil {
				slog.Error("send audio", "session", s.id, "error", err)
				m.metrics.SessionFailed("send")
				s.cancel()
			}
			return
		}
	}
}

func (m *SessionManager) receiveLoop(ctx context.Context, s *session, stream Stream) {
	for {
		t, err := stream.Recv()
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				slog.Debug("transcription stream closed by remote", "session", s.id)
				s.cancel()
			default:
				slog.Error("receive transcript", "session", s.id, "error", err)
				m.metrics.SessionFailed("receive")
				s.cancel()
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !t.IsFinal || t.Text == "" {
			continue
		}

		slog.Debug("final transcript", "session", s.id, "chars", len(t.Text))
		m.metrics.TranscriptEmitted()
		m.sink.Emit(t.Text)
	}
}
