package dictation

import (
	"io"
	"log/slog"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// TextSink receives recognized text in emission order.
type TextSink interface {
	Emit(text string)
}

// TextSinkFunc adapts a function to TextSink.
type TextSinkFunc func(text string)

func (f TextSinkFunc) Emit(text string) { f(text) }

// WriterSink writes transcripts to an io.Writer the way they would be typed:
// NFC-normalized and preceded by a single space so consecutive utterances
// read as one paragraph.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Emit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, " "+norm.NFC.String(text)); err != nil {
		slog.Error("write transcript", "error", err)
	}
}
