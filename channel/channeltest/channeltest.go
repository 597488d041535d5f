// Package channeltest provides an in-memory Channel implementation for
// exercising the stream coordinator without a network. Tests script
// per-method response handlers, push server events, and simulate transport
// loss.
package channeltest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/errors"
	"github.com/vertexvis/stream-go/pkg/events"
)

// Handler scripts the response for one request method. Returning an error
// surfaces to the requester as a stream request failure.
type Handler func(payload json.RawMessage) (any, error)

// Call records one request or send observed by a connection.
type Call struct {
	Method  string
	Payload json.RawMessage
}

// Channel is a fake channel.Channel. Each Connect hands out a new
// *Connection pre-loaded with the channel's default handlers.
type Channel struct {
	mu              sync.Mutex
	conns           []*Connection
	dialErrs        []error
	defaultHandlers map[string]Handler
}

var _ channel.Channel = (*Channel)(nil)

// New creates a fake channel with no scripted handlers.
func New() *Channel {
	return &Channel{defaultHandlers: make(map[string]Handler)}
}

// HandleDefault scripts a handler applied to every future connection.
func (c *Channel) HandleDefault(method string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHandlers[method] = fn
}

// FailNextDials queues dial errors consumed by subsequent Connect calls,
// one per call, before dials succeed again.
func (c *Channel) FailNextDials(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialErrs = append(c.dialErrs, errs...)
}

// Connect opens a fake connection, or fails with the next queued dial
// error.
func (c *Channel) Connect(ctx context.Context, _ channel.Descriptor, _ channel.Settings) (channel.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewTransportConnection("dial aborted", err)
	}

	c.mu.Lock()
	if len(c.dialErrs) > 0 {
		err := c.dialErrs[0]
		c.dialErrs = c.dialErrs[1:]
		c.mu.Unlock()
		return nil, err
	}
	conn := &Connection{
		handlers: make(map[string]Handler, len(c.defaultHandlers)),
		closed:   make(chan struct{}),
	}
	for method, fn := range c.defaultHandlers {
		conn.handlers[method] = fn
	}
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

// Connections returns every connection handed out so far, in dial order.
func (c *Channel) Connections() []*Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Connection(nil), c.conns...)
}

// LastConnection returns the most recently dialed connection, or nil.
func (c *Channel) LastConnection() *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.conns) == 0 {
		return nil
	}
	return c.conns[len(c.conns)-1]
}

// Connection is a fake channel.Connection.
type Connection struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	isClosed bool

	closed chan struct{}

	onEvent events.Dispatcher[channel.Event]
	onClose events.Dispatcher[error]
}

var _ channel.Connection = (*Connection)(nil)

// Handle scripts the response handler for one method on this connection.
func (c *Connection) Handle(method string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[method] = fn
}

// Request runs the scripted handler for method. Handlers run on their own
// goroutine so a blocking handler models a slow server while the caller's
// context stays cancellable.
func (c *Connection) Request(ctx context.Context, method string, payload, result any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("channeltest: encode %s payload: %w", method, err)
	}

	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return errors.ErrConnectionClosed
	}
	c.calls = append(c.calls, Call{Method: method, Payload: raw})
	fn, ok := c.handlers[method]
	c.mu.Unlock()

	if !ok {
		return errors.NewStreamRequestFailed(
			fmt.Sprintf("%s rejected: no handler scripted", method),
			errors.ErrRequestRejected)
	}

	type outcome struct {
		response any
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		response, err := fn(raw)
		done <- outcome{response: response, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return out.err
		}
		if result != nil && out.response != nil {
			encoded, err := json.Marshal(out.response)
			if err != nil {
				return fmt.Errorf("channeltest: encode %s response: %w", method, err)
			}
			if err := json.Unmarshal(encoded, result); err != nil {
				return fmt.Errorf("channeltest: decode %s response: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		return errors.Classify(ctx.Err(), errors.KindTransportConnection,
			fmt.Sprintf("%s aborted", method))
	case <-c.closed:
		return errors.NewTransportConnection(
			fmt.Sprintf("%s aborted", method), errors.ErrConnectionClosed)
	}
}

// Send records a one-way message.
func (c *Connection) Send(_ context.Context, method string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("channeltest: encode %s payload: %w", method, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return errors.ErrConnectionClosed
	}
	c.calls = append(c.calls, Call{Method: method, Payload: raw})
	return nil
}

// PushEvent delivers a server-pushed event to subscribers synchronously.
func (c *Connection) PushEvent(method string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("channeltest: encode %s event: %w", method, err)
	}
	c.onEvent.Emit(channel.Event{Method: method, Payload: raw})
	return nil
}

// FailWith simulates a transport-level loss: close subscribers fire with
// err and subsequent operations fail.
func (c *Connection) FailWith(err error) {
	c.shutdown(err)
}

// OnEvent subscribes to pushed events.
func (c *Connection) OnEvent(fn func(channel.Event)) *events.Subscription {
	return c.onEvent.Subscribe(fn)
}

// OnClose subscribes to connection termination.
func (c *Connection) OnClose(fn func(error)) *events.Subscription {
	return c.onClose.Subscribe(fn)
}

// Close marks the connection closed and fires close subscribers with nil.
func (c *Connection) Close() error {
	c.shutdown(nil)
	return nil
}

// shutdown transitions to closed exactly once and notifies subscribers.
// The emit runs outside any lock or once-guard: a close listener that
// closes the connection again (the coordinator's reconnect path disposes
// the failed connection from inside the close notification) sees the
// closed flag and returns instead of deadlocking.
func (c *Connection) shutdown(err error) {
	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return
	}
	c.isClosed = true
	c.mu.Unlock()

	close(c.closed)
	c.onClose.Emit(err)
}

// Closed reports whether Close or FailWith has been invoked.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosed
}

// Calls returns the recorded requests and sends for method, in order. An
// empty method returns everything.
func (c *Connection) Calls(method string) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if method == "" || call.Method == method {
			out = append(out, call)
		}
	}
	return out
}
