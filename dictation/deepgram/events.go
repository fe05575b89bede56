package deepgram

import (
	"encoding/json"
	"fmt"

	"go.aimuz.me/dictation/internal/types"
)

// Message types sent by the listen endpoint.
const (
	MessageResults       = "Results"
	MessageMetadata      = "Metadata"
	MessageUtteranceEnd  = "UtteranceEnd"
	MessageSpeechStarted = "SpeechStarted"
)

// Message is a discriminated union for server messages.
// Check the concrete type via type switch.
type Message interface {
	messageType() string
}

// ResultsMessage carries a transcription result for a span of audio.
type ResultsMessage struct {
	Type        string  `json:"type"`
	Channel     Channel `json:"channel"`
	IsFinal     bool    `json:"is_final"`
	SpeechFinal bool    `json:"speech_final"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
}

func (ResultsMessage) messageType() string { return MessageResults }

// Channel holds the recognition alternatives for one audio channel.
type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one recognition hypothesis.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Transcript returns the first alternative's text. A result without
// alternatives has empty text.
func (m ResultsMessage) Transcript() types.Transcript {
	t := types.Transcript{IsFinal: m.IsFinal}
	if len(m.Channel.Alternatives) > 0 {
		t.Text = m.Channel.Alternatives[0].Transcript
	}
	return t
}

// MetadataMessage is sent once per connection, and again when it closes.
type MetadataMessage struct {
	RequestID string  `json:"request_id"`
	Duration  float64 `json:"duration"`
	Channels  int     `json:"channels"`
}

func (MetadataMessage) messageType() string { return MessageMetadata }

// UtteranceEndMessage marks a gap in speech detected by the server.
type UtteranceEndMessage struct {
	LastWordEnd float64 `json:"last_word_end"`
}

func (UtteranceEndMessage) messageType() string { return MessageUtteranceEnd }

// SpeechStartedMessage marks the start of speech detected by the server.
type SpeechStartedMessage struct {
	Timestamp float64 `json:"timestamp"`
}

func (SpeechStartedMessage) messageType() string { return MessageSpeechStarted }

// UnknownMessage is returned for message types this package does not model.
type UnknownMessage struct {
	Type string
	Raw  json.RawMessage
}

func (m UnknownMessage) messageType() string { return m.Type }

// ParseMessage decodes a server message. Messages without a type field are
// treated as results.
func ParseMessage(data []byte) (Message, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch header.Type {
	case MessageResults, "":
		var m ResultsMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		return m, nil
	case MessageMetadata:
		var m MetadataMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		return m, nil
	case MessageUtteranceEnd:
		var m UtteranceEndMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode utterance end: %w", err)
		}
		return m, nil
	case MessageSpeechStarted:
		var m SpeechStartedMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode speech started: %w", err)
		}
		return m, nil
	default:
		return UnknownMessage{Type: header.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}
