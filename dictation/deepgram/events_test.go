package deepgram

import (
	"testing"

	"go.aimuz.me/dictation/internal/types"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantErr   bool
		checkFunc func(t *testing.T, m Message)
	}{
		{
			name: "FinalResult",
			json: `{
				"type": "Results",
				"channel": {"alternatives": [{"transcript": "hello world", "confidence": 0.98}]},
				"is_final": true,
				"speech_final": true
			}`,
			checkFunc: func(t *testing.T, m Message) {
				r, ok := m.(ResultsMessage)
				if !ok {
					t.Fatalf("got %T, want ResultsMessage", m)
				}
				want := types.Transcript{Text: "hello world", IsFinal: true}
				if got := r.Transcript(); got != want {
					t.Errorf("Transcript() = %+v, want %+v", got, want)
				}
			},
		},
		{
			name: "UntypedResult",
			json: `{"channel": {"alternatives": [{"transcript": "hi"}]}, "is_final": false}`,
			checkFunc: func(t *testing.T, m Message) {
				r, ok := m.(ResultsMessage)
				if !ok {
					t.Fatalf("got %T, want ResultsMessage", m)
				}
				want := types.Transcript{Text: "hi", IsFinal: false}
				if got := r.Transcript(); got != want {
					t.Errorf("Transcript() = %+v, want %+v", got, want)
				}
			},
		},
		{
			name: "FirstAlternativeWins",
			json: `{"channel": {"alternatives": [{"transcript": "one"}, {"transcript": "two"}]}, "is_final": true}`,
			checkFunc: func(t *testing.T, m Message) {
				if got := m.(ResultsMessage).Transcript().Text; got != "one" {
					t.Errorf("Text = %q, want %q", got, "one")
				}
			},
		},
		{
			name: "NoAlternatives",
			json: `{"type": "Results", "channel": {"alternatives": []}, "is_final": true}`,
			checkFunc: func(t *testing.T, m Message) {
				if got := m.(ResultsMessage).Transcript().Text; got != "" {
					t.Errorf("Text = %q, want empty", got)
				}
			},
		},
		{
			name: "Metadata",
			json: `{"type": "Metadata", "request_id": "req-1", "duration": 1.5, "channels": 1}`,
			checkFunc: func(t *testing.T, m Message) {
				md, ok := m.(MetadataMessage)
				if !ok {
					t.Fatalf("got %T, want MetadataMessage", m)
				}
				if md.RequestID != "req-1" {
					t.Errorf("RequestID = %q, want %q", md.RequestID, "req-1")
				}
			},
		},
		{
			name: "UtteranceEnd",
			json: `{"type": "UtteranceEnd", "last_word_end": 2.25}`,
			checkFunc: func(t *testing.T, m Message) {
				ue, ok := m.(UtteranceEndMessage)
				if !ok {
					t.Fatalf("got %T, want UtteranceEndMessage", m)
				}
				if ue.LastWordEnd != 2.25 {
					t.Errorf("LastWordEnd = %v, want 2.25", ue.LastWordEnd)
				}
			},
		},
		{
			name: "SpeechStarted",
			json: `{"type": "SpeechStarted", "timestamp": 0.5}`,
			checkFunc: func(t *testing.T, m Message) {
				if _, ok := m.(SpeechStartedMessage); !ok {
					t.Fatalf("got %T, want SpeechStartedMessage", m)
				}
			},
		},
		{
			name: "Unknown",
			json: `{"type": "Warning", "description": "slow down"}`,
			checkFunc: func(t *testing.T, m Message) {
				u, ok := m.(UnknownMessage)
				if !ok {
					t.Fatalf("got %T, want UnknownMessage", m)
				}
				if u.Type != "Warning" {
					t.Errorf("Type = %q, want %q", u.Type, "Warning")
				}
			},
		},
		{
			name:    "InvalidJSON",
			json:    `{"channel":`,
			wantErr: true,
		},
		{
			name:    "WrongShape",
			json:    `{"type": "Results", "is_final": "yes"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMessage([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, m)
			}
		})
	}
}
