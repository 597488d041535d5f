package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/vertexvis/stream-go/errors"
	"github.com/vertexvis/stream-go/pkg/events"
)

// Envelope type discriminators.
const (
	envelopeRequest  = "request"
	envelopeResponse = "response"
	envelopeEvent    = "event"
)

// envelope is the JSON wire frame wrapping every message in both
// directions. Requests carry an id when a response is expected.
type envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Method  string          `json:"method,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *envelopeError  `json:"error,omitempty"`
}

// envelopeError is a server-side rejection of a request.
type envelopeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WebSocket is the production Channel implementation: JSON envelopes over
// a gorilla/websocket connection.
type WebSocket struct {
	logger *slog.Logger
}

var _ Channel = (*WebSocket)(nil)

// NewWebSocket creates a websocket channel. A nil logger defaults to
// slog.Default().
func NewWebSocket(logger *slog.Logger) *WebSocket {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{logger: logger}
}

// Connect dials the endpoint and starts the connection's read and write
// pumps. Dial failures are classified as transport connection errors.
func (w *WebSocket) Connect(ctx context.Context, desc Descriptor, settings Settings) (Connection, error) {
	settings = settings.withDefaults()

	dialer := websocket.Dialer{HandshakeTimeout: settings.HandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, desc.URL, desc.Header)
	if err != nil {
		return nil, errors.NewTransportConnection(
			fmt.Sprintf("unable to connect to %s", desc.URL), err)
	}

	conn := &wsConn{
		ws:       ws,
		settings: settings,
		logger:   w.logger.With("remote", desc.URL),
		send:     make(chan []byte, 64),
		pending:  make(map[string]chan envelope),
		closed:   make(chan struct{}),
	}
	conn.start()
	return conn, nil
}

// wsConn is one live websocket connection. All socket writes funnel
// through the write pump; gorilla permits a single writer.
type wsConn struct {
	ws       *websocket.Conn
	settings Settings
	logger   *slog.Logger

	send   chan []byte
	closed chan struct{}

	mu       sync.Mutex
	pending  map[string]chan envelope
	isClosed bool

	closeOnce  sync.Once
	finishOnce sync.Once

	onEvent events.Dispatcher[Event]
	onClose events.Dispatcher[error]
}

var _ Connection = (*wsConn)(nil)

func (c *wsConn) start() {
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(c.readPump)
	g.Go(func() error { return c.writePump(ctx) })
	go func() {
		c.finish(g.Wait())
	}()
}

// readPump drains inbound messages until the socket fails or is closed.
func (c *wsConn) readPump() error {
	_ = c.ws.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return nil
			default:
			}
			return errors.NewTransportConnection("websocket read failed", err)
		}
		c.route(raw)
	}
}

// route dispatches one inbound message by envelope type. The envelope is
// sniffed before decoding so malformed payloads only affect their own
// message.
func (c *wsConn) route(raw []byte) {
	switch gjson.GetBytes(raw, "type").String() {
	case envelopeResponse:
		id := gjson.GetBytes(raw, "id").String()
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("discarding malformed response", "error", err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if !ok {
			// Response for a request that timed out or was cancelled.
			c.logger.Debug("discarding unmatched response", "id", id)
			return
		}
		ch <- env
	case envelopeEvent:
		method := gjson.GetBytes(raw, "method").String()
		payload := gjson.GetBytes(raw, "payload")
		c.onEvent.Emit(Event{Method: method, Payload: json.RawMessage(payload.Raw)})
	default:
		c.logger.Warn("discarding message with unknown envelope type")
	}
}

// writePump owns all socket writes: queued messages, keepalive pings, and
// the final close frame. On a write failure it force-closes the socket so
// the read pump unblocks.
func (c *wsConn) writePump(ctx context.Context) error {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.ws.Close()
				return errors.NewTransportConnection("websocket write failed", err)
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.ws.Close()
				return errors.NewTransportConnection("websocket ping failed", err)
			}
		case <-c.closed:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case <-ctx.Done():
			// The read pump failed; nothing left to write.
			return nil
		}
	}
}

// Request sends a request envelope and waits for the matching response.
func (c *wsConn) Request(ctx context.Context, method string, payload, result any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.RequestTimeout)
		defer cancel()
	}

	id := uuid.NewString()
	reply := make(chan envelope, 1)

	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return errors.ErrConnectionClosed
	}
	c.pending[id] = reply
	c.mu.Unlock()

	if err := c.enqueue(ctx, envelope{ID: id, Type: envelopeRequest, Method: method}, payload); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return err
	}

	select {
	case env, ok := <-reply:
		if !ok {
			// Connection torn down with the request outstanding.
			return errors.NewTransportConnection(
				fmt.Sprintf("%s aborted", method), errors.ErrConnectionClosed)
		}
		if env.Error != nil {
			return errors.NewStreamRequestFailed(
				fmt.Sprintf("%s rejected: %s", method, env.Error.Message),
				errors.ErrRequestRejected)
		}
		if result != nil && len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, result); err != nil {
				return errors.NewStreamRequestFailed(
					fmt.Sprintf("%s response malformed", method), err)
			}
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return errors.Classify(ctx.Err(), errors.KindTransportConnection,
			fmt.Sprintf("%s timed out", method))
	case <-c.closed:
		return errors.ErrConnectionClosed
	}
}

// Send fires a one-way message with no response expected.
func (c *wsConn) Send(ctx context.Context, method string, payload any) error {
	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return errors.ErrConnectionClosed
	}
	c.mu.Unlock()
	return c.enqueue(ctx, envelope{Type: envelopeRequest, Method: method}, payload)
}

func (c *wsConn) enqueue(ctx context.Context, env envelope, payload any) error {
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("channel: encode %s payload: %w", env.Method, err)
		}
		env.Payload = raw
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("channel: encode %s envelope: %w", env.Method, err)
	}

	select {
	case c.send <- raw:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return errors.ErrConnectionClosed
	}
}

// OnEvent subscribes to server-pushed messages.
func (c *wsConn) OnEvent(fn func(Event)) *events.Subscription {
	return c.onEvent.Subscribe(fn)
}

// OnClose subscribes to connection termination.
func (c *wsConn) OnClose(fn func(error)) *events.Subscription {
	return c.onClose.Subscribe(fn)
}

// Close tears the connection down. Safe to call more than once.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		// Give the write pump a moment to flush the close frame, then
		// force the socket shut so the read pump unblocks.
		time.AfterFunc(100*time.Millisecond, func() { _ = c.ws.Close() })
	})
	return nil
}

// finish runs once when both pumps have exited: it fails outstanding
// requests and notifies close subscribers.
func (c *wsConn) finish(err error) {
	c.finishOnce.Do(func() {
		_ = c.ws.Close()

		c.mu.Lock()
		c.isClosed = true
		outstanding := c.pending
		c.pending = make(map[string]chan envelope)
		c.mu.Unlock()

		for _, ch := range outstanding {
			close(ch)
		}
		if err != nil {
			c.logger.Debug("connection closed", "error", err)
		}
		c.onClose.Emit(err)
	})
}
