package stream

import (
	"context"
	"sync"
	"time"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/pkg/events"
	"github.com/vertexvis/stream-go/token"
)

// handle is the disposable connection handle owned by exactly one state
// value at a time. Disposing it releases the transport and synchronously
// cancels every in-flight operation tied to the attempt: pending requests
// abort through the context, event and close subscriptions detach, and
// owned timers stop. No timer or socket survives a transition away from
// the owning state.
type handle struct {
	generation uint64

	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool // releases the caller-context watcher

	mu        sync.Mutex
	conn      channel.Connection
	refresher *token.Refresher
	offline   *time.Timer
	subs      []*events.Subscription
	disposed  bool
}

// newHandle creates a handle for one connection attempt. The attempt
// context is detached from callerCtx's values-free cancellation chain but
// still aborts if callerCtx is cancelled while the attempt is in flight.
func newHandle(callerCtx context.Context, generation uint64) *handle {
	ctx, cancel := context.WithCancel(context.WithoutCancel(callerCtx))
	stop := context.AfterFunc(callerCtx, cancel)
	return &handle{
		generation: generation,
		ctx:        ctx,
		cancel:     cancel,
		stop:       stop,
	}
}

// setConn attaches the dialed connection. Returns false if the handle was
// disposed while the dial was in flight, in which case the caller must
// close the connection itself.
func (h *handle) setConn(conn channel.Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return false
	}
	h.conn = conn
	return true
}

// connection returns the attached connection, or nil.
func (h *handle) connection() channel.Connection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn
}

// setRefresher attaches the token refresher. Returns false if already
// disposed, in which case the caller must stop the refresher itself.
func (h *handle) setRefresher(r *token.Refresher) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return false
	}
	h.refresher = r
	return true
}

// addSubs records event subscriptions removed on dispose.
func (h *handle) addSubs(subs ...*events.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		for _, s := range subs {
			s.Unsubscribe()
		}
		return
	}
	h.subs = append(h.subs, subs...)
}

// armOffline starts the offline debounce timer unless one is already
// armed. fn runs if the timer fires before cancelOffline.
func (h *handle) armOffline(threshold time.Duration, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed || h.offline != nil {
		return
	}
	h.offline = time.AfterFunc(threshold, fn)
}

// cancelOffline stops a pending offline debounce timer.
func (h *handle) cancelOffline() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.offline != nil {
		h.offline.Stop()
		h.offline = nil
	}
}

// dispose tears the attempt down. Subscriptions detach before the
// connection closes so the close notification cannot re-enter the
// coordinator as a spurious reconnect trigger. Idempotent.
func (h *handle) dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	subs := h.subs
	h.subs = nil
	conn := h.conn
	refresher := h.refresher
	offline := h.offline
	h.offline = nil
	h.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	if offline != nil {
		offline.Stop()
	}
	if refresher != nil {
		refresher.Stop()
	}
	h.stop()
	h.cancel()
	if conn != nil {
		_ = conn.Close()
	}
}
