// Package deepgram streams linear16 audio to a Deepgram-compatible listen
// endpoint over a websocket and decodes its transcription results.
package deepgram

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.aimuz.me/dictation/internal/types"
)

const (
	// DefaultEndpoint is the hosted streaming endpoint.
	DefaultEndpoint = "wss://api.deepgram.com/v1/listen"

	// Encoding, SampleRate and Channels describe the outbound audio.
	Encoding   = "linear16"
	SampleRate = 16000
	Channels   = 1
)

// ErrClosed is returned by Recv after the server or the client closed the
// connection normally. It matches io.EOF.
var ErrClosed = fmt.Errorf("deepgram: connection closed: %w", io.EOF)

// Client opens streaming connections.
type Client struct {
	dialer *websocket.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithDialer sets the websocket dialer, e.g. to add a proxy or TLS config.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// NewClient creates a Client. The handshake has no timeout of its own; it is
// bounded by the context passed to Dial.
func NewClient(opts ...Option) *Client {
	c := &Client{
		dialer: &websocket.Dialer{
			Proxy: http.ProxyFromEnvironment,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListenURL builds the streaming URL for cfg. An empty cfg.Endpoint means
// DefaultEndpoint.
func ListenURL(cfg types.SessionConfig) (string, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return "", fmt.Errorf("endpoint scheme must be ws or wss, got %q", u.Scheme)
	}

	q := u.Query()
	q.Set("model", cfg.Model)
	q.Set("encoding", Encoding)
	q.Set("sample_rate", strconv.Itoa(SampleRate))
	q.Set("channels", strconv.Itoa(Channels))
	q.Set("language", cfg.Language)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial performs the authenticated handshake and returns the connection.
func (c *Client) Dial(ctx context.Context, cfg types.SessionConfig) (*Conn, error) {
	u, err := ListenURL(cfg)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+cfg.APIKey)

	ws, resp, err := c.dialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	slog.Debug("deepgram connected", "model", cfg.Model, "language", cfg.Language)
	return &Conn{ws: ws}, nil
}

// Conn is one streaming connection. Send and Recv may be called from
// different goroutines; Close may be called from any goroutine.
type Conn struct {
	ws        *websocket.Conn
	buf       []byte // Send scratch space
	closeOnce sync.Once
	closeErr  error
}

// Send writes samples as one binary frame of little-endian 16-bit PCM.
func (c *Conn) Send(samples []int16) error {
	c.buf = EncodePCM(c.buf[:0], samples)
	if err := c.ws.WriteMessage(websocket.BinaryMessage, c.buf); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

// Recv blocks until the next transcription result. Other server messages are
// skipped. It returns ErrClosed on a normal close.
func (c *Conn) Recv() (types.Transcript, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return types.Transcript{}, ErrClosed
			}
			return types.Transcript{}, fmt.Errorf("read message: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}

		msg, err := ParseMessage(data)
		if err != nil {
			return types.Transcript{}, err
		}

		switch m := msg.(type) {
		case ResultsMessage:
			return m.Transcript(), nil
		case MetadataMessage:
			slog.Debug("deepgram metadata", "request_id", m.RequestID)
		case UnknownMessage:
			slog.Debug("deepgram unknown message", "type", m.Type)
		}
	}
}

// Close sends a close frame and closes the underlying connection. It is
// safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// EncodePCM appends samples to dst as little-endian 16-bit integers.
func EncodePCM(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}
