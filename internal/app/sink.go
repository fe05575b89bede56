package app

import (
	"log/slog"
	"strings"

	"go.aimuz.me/dictation/dictation"
	"go.aimuz.me/dictation/internal/metrics"
	"go.aimuz.me/dictation/langdetect"
)

// minDetectWords is the shortest transcript checked for its language.
const minDetectWords = 4

// TranscriptSink forwards transcripts to out and flags ones that appear to be
// in a language other than the configured one, which usually means the
// language toggle is set wrong.
type TranscriptSink struct {
	out      dictation.TextSink
	detector *langdetect.Detector
	language func() string
	metrics  *metrics.Metrics
}

// NewTranscriptSink creates a TranscriptSink. A nil detector disables the
// language check; language returns the configured language tag.
func NewTranscriptSink(out dictation.TextSink, detector *langdetect.Detector, language func() string, m *metrics.Metrics) *TranscriptSink {
	return &TranscriptSink{
		out:      out,
		detector: detector,
		language: language,
		metrics:  m,
	}
}

func (s *TranscriptSink) Emit(text string) {
	s.out.Emit(text)
	s.checkLanguage(text)
}

func (s *TranscriptSink) checkLanguage(text string) {
	if s.detector == nil || len(strings.Fields(text)) < minDetectWords {
		return
	}

	want, err := langdetect.Base(s.language())
	if err != nil || !s.detector.Supports(want) {
		return
	}

	got, ok := s.detector.Detect(text)
	if !ok || got == want {
		return
	}

	slog.Info("transcript language differs from configured language",
		"detected", got, "configured", want)
	s.metrics.LanguageMismatch()
}
