// Package channel defines the duplex message channel between the client
// and the rendering service, plus its websocket implementation. The stream
// coordinator decides when connections open, close, and reopen; this
// package contains the transport logic itself.
package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vertexvis/stream-go/pkg/events"
)

// Descriptor identifies the endpoint a connection should be opened against.
type Descriptor struct {
	// URL is the websocket endpoint, e.g. "wss://stream.vertexvis.com/ws".
	URL string
	// Header carries extra handshake headers (authorization, client info).
	Header http.Header
}

// Settings tunes an individual connection.
type Settings struct {
	// HandshakeTimeout bounds the websocket dial. Default 15s.
	HandshakeTimeout time.Duration
	// RequestTimeout bounds each round-trip request. Default 15s.
	RequestTimeout time.Duration
	// PingInterval is the keepalive ping cadence. Default 30s.
	PingInterval time.Duration
	// PongWait is how long to wait for a pong before treating the
	// connection as lost. Default 2 * PingInterval.
	PongWait time.Duration
	// WriteTimeout bounds each outbound write. Default 10s.
	WriteTimeout time.Duration
}

// withDefaults fills unset settings.
func (s Settings) withDefaults() Settings {
	if s.HandshakeTimeout <= 0 {
		s.HandshakeTimeout = 15 * time.Second
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 15 * time.Second
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.PongWait <= 0 {
		s.PongWait = 2 * s.PingInterval
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 10 * time.Second
	}
	return s
}

// Event is a server-pushed message.
type Event struct {
	Method  string
	Payload json.RawMessage
}

// Channel opens connections to the rendering service.
type Channel interface {
	// Connect opens a new connection. The returned connection is live
	// until Close is called or the transport fails.
	Connect(ctx context.Context, desc Descriptor, settings Settings) (Connection, error)
}

// Connection is one open duplex connection. All methods are safe for
// concurrent use.
type Connection interface {
	// Request performs a round trip: it sends a request envelope for
	// method and decodes the matching response into result. A non-nil
	// result must be a pointer. Server-side rejections surface as
	// KindStreamRequestFailed errors.
	Request(ctx context.Context, method string, payload, result any) error

	// Send fires a one-way message with no response expected.
	Send(ctx context.Context, method string, payload any) error

	// OnEvent subscribes to server-pushed messages. Events are delivered
	// in arrival order.
	OnEvent(fn func(Event)) *events.Subscription

	// OnClose subscribes to connection termination. The handler fires
	// exactly once, with nil for a locally requested close.
	OnClose(fn func(error)) *events.Subscription

	// Close tears the connection down. Idempotent.
	Close() error
}
