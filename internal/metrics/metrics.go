// Package metrics defines the Prometheus instruments of the dictation
// pipeline.
//
// All recording methods are safe on a nil *Metrics, so components can be
// built without metrics in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dictation"

// Metrics contains all Prometheus metrics for the dictation pipeline.
type Metrics struct {
	// Audio metrics
	Chunks *prometheus.CounterVec // path: vad, drained
	Events *prometheus.CounterVec // VAD event name

	// Utterance metrics
	Utterances        *prometheus.CounterVec // reason the utterance ended
	UtteranceDuration prometheus.Histogram

	// Session metrics
	ActiveSessions  prometheus.Gauge
	SessionDuration prometheus.Histogram
	SessionFailures *prometheus.CounterVec // stage: dial, send, receive
	Transcripts     prometheus.Counter

	// Application metrics
	State              *prometheus.GaugeVec // 1 for the current state
	LanguageMismatches prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Chunks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_chunks_total",
			Help:      "Audio chunks consumed by the orchestrator, by path",
		}, []string{"path"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vad_events_total",
			Help:      "Voice activity detector events",
		}, []string{"event"}),

		Utterances: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Completed utterances, by end reason",
		}, []string{"reason"}),
		UtteranceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "utterance_duration_seconds",
			Help:      "Duration from speech start to utterance end",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~1 minute
		}),

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcription_sessions_active",
			Help:      "Live transcription sessions (0 or 1)",
		}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_session_duration_seconds",
			Help:      "Lifetime of transcription sessions",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
		SessionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_session_failures_total",
			Help:      "Transcription sessions that failed, by stage",
		}, []string{"stage"}),
		Transcripts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_total",
			Help:      "Final transcripts delivered to the text sink",
		}),

		State: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_state",
			Help:      "Current application state (1 for the active state)",
		}, []string{"state"}),
		LanguageMismatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "language_mismatches_total",
			Help:      "Transcripts detected in a language other than the configured one",
		}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
// ─────────────────────────────────────────────────────────────────────────────

func (m *Metrics) ChunkProcessed(path string) {
	if m == nil {
		return
	}
	m.Chunks.WithLabelValues(path).Inc()
}

func (m *Metrics) Event(name string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(name).Inc()
}

func (m *Metrics) UtteranceEnded(reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.Utterances.WithLabelValues(reason).Inc()
	m.UtteranceDuration.Observe(d.Seconds())
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded(d time.Duration) {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
	m.SessionDuration.Observe(d.Seconds())
}

func (m *Metrics) SessionFailed(stage string) {
	if m == nil {
		return
	}
	m.SessionFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) TranscriptEmitted() {
	if m == nil {
		return
	}
	m.Transcripts.Inc()
}

// StateChanged moves the state gauge from one state label to another.
func (m *Metrics) StateChanged(from, to string) {
	if m == nil {
		return
	}
	m.State.WithLabelValues(from).Set(0)
	m.State.WithLabelValues(to).Set(1)
}

func (m *Metrics) LanguageMismatch() {
	if m == nil {
		return
	}
	m.LanguageMismatches.Inc()
}
