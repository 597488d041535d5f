package stream

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/clock"
	"github.com/vertexvis/stream-go/errors"
	"github.com/vertexvis/stream-go/metric"
	"github.com/vertexvis/stream-go/pkg/events"
	"github.com/vertexvis/stream-go/pkg/retry"
	"github.com/vertexvis/stream-go/resource"
	"github.com/vertexvis/stream-go/sessioncache"
	"github.com/vertexvis/stream-go/token"
)

// Coordinator owns the stream session lifecycle: disconnected, connecting,
// connected, and reconnecting, including server-initiated handoffs,
// offline debouncing, and proactive credential refresh.
//
// All work is event driven. Operations that suspend (dialing, round-trip
// requests, waiting for the first frame) run without holding the state
// lock, so a newer Load or Disconnect can always preempt an older
// in-flight attempt: correctness is "last caller wins". A completing
// attempt publishes its outcome only if it still owns the current state.
type Coordinator struct {
	channel channel.Channel
	cfg     Config
	logger  *slog.Logger
	metrics *metric.Metrics
	cache   sessioncache.Store

	mu         sync.Mutex
	state      State
	generation uint64
	clientID   string
	deviceID   string
	dimensions channel.Dimensions
	attributes channel.StreamAttributes

	// Notification queue: transitions commit under mu and append here;
	// one drainer at a time delivers in commit order, so listeners never
	// observe changes out of order or re-entrantly.
	notifying bool
	queue     []StateChange

	stateChanged events.Dispatcher[StateChange]
	frames       events.Dispatcher[*channel.Frame]
}

// New creates a coordinator over the given channel.
func New(ch channel.Channel, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		channel: ch,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "stream"),
		metrics: cfg.Metrics,
		cache:   cfg.Cache,
		state:   &Disconnected{},
	}
}

// State returns the current session state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChanged subscribes to session state transitions. The listener
// fires once per completed transition, after the new state's invariants
// are established.
func (c *Coordinator) OnStateChanged(fn func(StateChange)) *events.Subscription {
	return c.stateChanged.Subscribe(fn)
}

// OnFrame subscribes to rendered frames. Frames are delivered in arrival
// order after depth-buffer merging.
func (c *Coordinator) OnFrame(fn func(*channel.Frame)) *events.Subscription {
	return c.frames.Subscribe(fn)
}

// Load resolves the locator and drives the session toward it.
//
// From Disconnected or ConnectionFailed it opens a brand-new transport
// and requests a new stream. While connecting, reconnecting, or connected,
// a locator addressing a different stream disposes the current connection
// and opens a fresh one; while connected, a locator differing only by a
// scene view state switches the view over the existing channel without
// reopening the transport. Loading the current resource again is a no-op.
//
// Every failure is classified, drives a transition to ConnectionFailed,
// and is returned.
func (c *Coordinator) Load(ctx context.Context, locator string, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	res, err := resource.FromURN(locator)
	if err != nil {
		c.failAny(err)
		return err
	}

	c.mu.Lock()
	if o.clientID != "" {
		c.clientID = o.clientID
	}
	if o.deviceID != "" {
		c.deviceID = o.deviceID
	}
	if c.deviceID == "" {
		c.deviceID = uuid.NewString()
	}

	prev := c.state
	switch s := prev.(type) {
	case *Connecting:
		if s.Resource.Equal(res) {
			c.mu.Unlock()
			return nil
		}
	case *Reconnecting:
		if s.Resource.Equal(res) {
			c.mu.Unlock()
			return nil
		}
	case *Connected:
		if s.Resource.Equal(res) {
			c.mu.Unlock()
			return nil
		}
		if s.Resource.SameStream(res) {
			c.mu.Unlock()
			return c.switchSceneView(ctx, s.handle, res)
		}
	}
	c.mu.Unlock()

	return c.connectNew(ctx, prev, res)
}

// Update applies view settings locally and, when connected, pushes them to
// the server. The last-known values are folded into the next start or
// reconnect request, so updates made while disconnected are not lost.
func (c *Coordinator) Update(ctx context.Context, fields UpdateFields) error {
	c.mu.Lock()
	if fields.Dimensions != nil {
		c.dimensions = *fields.Dimensions
	}
	if fields.StreamAttributes != nil {
		if fields.StreamAttributes.DepthBuffersEnabled != nil {
			c.attributes.DepthBuffersEnabled = fields.StreamAttributes.DepthBuffersEnabled
		}
		if fields.StreamAttributes.FeatureLinesEnabled != nil {
			c.attributes.FeatureLinesEnabled = fields.StreamAttributes.FeatureLinesEnabled
		}
		if fields.StreamAttributes.FrameBackgroundColor != nil {
			c.attributes.FrameBackgroundColor = fields.StreamAttributes.FrameBackgroundColor
		}
	}
	if fields.FrameBgColor != nil {
		c.attributes.FrameBackgroundColor = fields.FrameBgColor
	}
	dims, attrs := c.dimensions, c.attributes
	cur, connected := c.state.(*Connected)
	c.mu.Unlock()

	if !connected {
		return nil
	}
	conn := cur.handle.connection()
	if conn == nil {
		return nil
	}

	if fields.Dimensions != nil {
		err := conn.Request(ctx, channel.MethodUpdateDimensions,
			channel.UpdateDimensionsRequest{Dimensions: dims}, nil)
		if err != nil {
			return errors.Wrap(err, "Coordinator", "Update", "push dimensions")
		}
	}
	if fields.StreamAttributes != nil || fields.FrameBgColor != nil {
		err := conn.Request(ctx, channel.MethodUpdateStreamAttributes,
			channel.UpdateStreamAttributesRequest{StreamAttributes: attrs}, nil)
		if err != nil {
			return errors.Wrap(err, "Coordinator", "Update", "push stream attributes")
		}
	}
	return nil
}

// Disconnect disposes the current connection, if any, and transitions to
// Disconnected. Valid from any state; disconnecting twice is a no-op.
func (c *Coordinator) Disconnect() {
	c.mu.Lock()
	prev := c.state
	if _, ok := prev.(*Disconnected); ok {
		c.mu.Unlock()
		return
	}
	c.commitLocked(&Disconnected{})
	c.mu.Unlock()

	if h := stateHandle(prev); h != nil {
		h.dispose()
	}
	c.drain()
	c.logger.Info("stream disconnected")
}

// NotifyOffline reports a host offline signal. A debounce timer of
// OfflineThreshold arms; if NotifyOnline arrives first nothing happens,
// otherwise the reconnect path starts exactly as for a transport close.
func (c *Coordinator) NotifyOffline() {
	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	c.mu.Unlock()
	if !ok {
		return
	}
	h := cur.handle
	c.logger.Debug("offline signal received", "threshold", c.cfg.OfflineThreshold)
	h.armOffline(c.cfg.OfflineThreshold, func() {
		c.logger.Info("offline threshold elapsed, reconnecting")
		c.reconnect(h, metric.TriggerOffline)
	})
}

// NotifyOnline reports a host online signal, cancelling a pending offline
// debounce timer.
func (c *Coordinator) NotifyOnline() {
	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	c.mu.Unlock()
	if ok {
		cur.handle.cancelOffline()
	}
}

// --- transition machinery ---

// commitLocked replaces the state and queues its notification. The caller
// holds mu and must call drain after releasing it.
func (c *Coordinator) commitLocked(next State) {
	prev := c.state
	c.state = next
	c.queue = append(c.queue, StateChange{Previous: prev, Current: next})
}

// drain delivers queued notifications in commit order. Only one drainer
// runs at a time; nested transitions performed by listeners append to the
// queue and are delivered by the active drainer.
func (c *Coordinator) drain() {
	c.mu.Lock()
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true
	for len(c.queue) > 0 {
		change := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.stateChanged.Emit(change)
		c.mu.Lock()
	}
	c.notifying = false
	c.mu.Unlock()
}

// transitionFrom commits next only if the current state is still the
// expected value (identity, not type). A false return means the attempt
// was superseded and its outcome must be discarded.
func (c *Coordinator) transitionFrom(expected, next State) bool {
	c.mu.Lock()
	if c.state != expected {
		c.mu.Unlock()
		return false
	}
	c.commitLocked(next)
	c.mu.Unlock()
	c.drain()
	return true
}

// replaceConnected rebuilds the current Connected state owned by h via fn
// and commits the replacement. Returns false when h no longer owns the
// state.
func (c *Coordinator) replaceConnected(h *handle, fn func(next *Connected)) bool {
	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	if !ok || cur.handle != h {
		c.mu.Unlock()
		return false
	}
	next := *cur
	fn(&next)
	c.commitLocked(&next)
	c.mu.Unlock()
	c.drain()
	return true
}

// failAny transitions to ConnectionFailed from whatever the current state
// is, disposing its connection. Used for failures that precede any
// attempt, such as locator resolution.
func (c *Coordinator) failAny(err error) {
	c.mu.Lock()
	prev := c.state
	c.commitLocked(&ConnectionFailed{Message: errors.MessageOf(err), Err: err})
	c.mu.Unlock()

	if h := stateHandle(prev); h != nil {
		h.dispose()
	}
	c.drain()
	c.logger.Warn("load failed", "error", err)
}

// failAttempt disposes the attempt owning expected and transitions it to
// ConnectionFailed. If the attempt was superseded the current state is
// left alone. The classified error is returned for the caller to rethrow.
func (c *Coordinator) failAttempt(expected State, path string, err error) error {
	err = errors.Classify(err, errors.KindTransportConnection, "stream connection failed")
	c.metrics.IncConnectFailure(path, errors.KindOf(err).String())

	if h := stateHandle(expected); h != nil {
		h.dispose()
	}
	failed := &ConnectionFailed{Message: errors.MessageOf(err), Err: err}
	if c.transitionFrom(expected, failed) {
		c.logger.Warn("stream connection failed", "path", path, "error", err)
	} else {
		c.logger.Debug("discarding failure of superseded attempt", "error", err)
	}
	return err
}

// --- new-stream path ---

func (c *Coordinator) connectNew(ctx context.Context, prev State, res *resource.Resource) error {
	start := time.Now()

	c.mu.Lock()
	if c.state != prev {
		// A competing call already moved the state; it owns the outcome.
		c.mu.Unlock()
		return errors.ErrDisposed
	}
	c.generation++
	h := newHandle(ctx, c.generation)
	connecting := &Connecting{Resource: res, handle: h}
	c.commitLocked(connecting)
	clientID, deviceID := c.clientID, c.deviceID
	dims, attrs := c.dimensions, c.attributes
	c.mu.Unlock()

	// Dispose after committing the transition so the prior transport's
	// close is observed before the new dial begins.
	if ph := stateHandle(prev); ph != nil {
		ph.dispose()
	}
	c.drain()

	c.metrics.IncConnectAttempt(metric.PathNew)
	c.logger.Info("opening stream", "resource", res.String(), "generation", h.generation)

	sessionHint := c.readSessionHint(h.ctx, clientID)

	conn, err := c.dial(h.ctx, c.cfg.NewStreamRetry)
	if err != nil {
		return c.failAttempt(connecting, metric.PathNew, err)
	}
	if !h.setConn(conn) {
		_ = conn.Close()
		return errors.ErrDisposed
	}

	firstFrame := make(chan *channel.Frame, 4)
	c.attachHandlers(h, conn, firstFrame)

	sample, err := c.syncClock(h.ctx, conn)
	if err != nil {
		return c.failAttempt(connecting, metric.PathNew, err)
	}

	req := channel.StartStreamRequest{
		StreamKey:        res.Resource.ID,
		Dimensions:       dims,
		StreamAttributes: attrs,
		SuppliedIDs:      res.SuppliedIDs(),
		ClientID:         clientID,
		DeviceID:         deviceID,
		SessionID:        sessionHint,
	}
	if id, ok := res.SceneViewStateID(); ok {
		req.SceneViewStateID = id
	}

	var resp channel.StartStreamResponse
	if err := conn.Request(h.ctx, channel.MethodStartStream, req, &resp); err != nil {
		return c.failAttempt(connecting, metric.PathNew, err)
	}

	frame, err := c.awaitFirstFrame(h, firstFrame)
	if err != nil {
		return c.failAttempt(connecting, metric.PathNew, err)
	}

	tok := c.tokenFrom(resp.Token)
	refresher := c.newRefresher(h, conn, tok)

	connected := &Connected{
		Resource:         res,
		StreamID:         resp.StreamID,
		SceneViewID:      resp.SceneViewID,
		SessionID:        resp.SessionID,
		Token:            tok,
		Frame:            frame,
		Clock:            sample,
		WorldOrientation: resp.WorldOrientation,
		handle:           h,
	}
	if !c.transitionFrom(connecting, connected) {
		refresher.Stop()
		h.dispose()
		return errors.ErrDisposed
	}
	if h.setRefresher(refresher) {
		refresher.Start()
	} else {
		refresher.Stop()
	}

	c.writeSessionHint(clientID, resp.SessionID, deviceID)
	c.metrics.ObserveFirstFrame(time.Since(start).Seconds())
	c.frames.Emit(frame)
	c.ackFrame(h, conn, frame)
	c.drainBufferedFrames(h, firstFrame)
	c.logger.Info("stream connected",
		"stream_id", resp.StreamID, "scene_view_id", resp.SceneViewID,
		"generation", h.generation)
	return nil
}

// --- reconnect path ---

// reconnect moves a live session owned by h onto a fresh transport,
// preserving the stream id. Triggered by transport close, a server
// graceful-reconnect request, or a sustained offline signal; runs in the
// goroutine of whichever event fired.
func (c *Coordinator) reconnect(h *handle, trigger string) {
	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	if !ok || cur.handle != h {
		c.mu.Unlock()
		return
	}
	c.generation++
	h2 := newHandle(context.Background(), c.generation)
	reconnecting := &Reconnecting{
		Resource:         cur.Resource,
		StreamID:         cur.StreamID,
		SceneViewID:      cur.SceneViewID,
		SessionID:        cur.SessionID,
		Frame:            cur.Frame,
		WorldOrientation: cur.WorldOrientation,
		handle:           h2,
	}
	c.commitLocked(reconnecting)
	clientID, deviceID := c.clientID, c.deviceID
	dims, attrs := c.dimensions, c.attributes
	c.mu.Unlock()

	h.dispose()
	c.drain()

	c.metrics.IncConnectAttempt(metric.PathReconnect)
	c.metrics.IncReconnect(trigger)
	c.logger.Info("reconnecting stream",
		"stream_id", reconnecting.StreamID, "trigger", trigger,
		"generation", h2.generation)

	if err := c.runReconnect(reconnecting, dims, attrs, clientID, deviceID); err != nil {
		// Background path: there is no caller to rethrow to. The
		// ConnectionFailed transition performed by failAttempt is the
		// observable surface.
		c.logger.Error("reconnect failed", "stream_id", reconnecting.StreamID, "error", err)
	}
}

func (c *Coordinator) runReconnect(rec *Reconnecting, dims channel.Dimensions, attrs channel.StreamAttributes, clientID, deviceID string) error {
	h := rec.handle

	conn, err := c.dial(h.ctx, c.cfg.ReconnectRetry)
	if err != nil {
		return c.failAttempt(rec, metric.PathReconnect, err)
	}
	if !h.setConn(conn) {
		_ = conn.Close()
		return nil
	}

	firstFrame := make(chan *channel.Frame, 4)
	c.attachHandlers(h, conn, firstFrame)

	sample, err := c.syncClock(h.ctx, conn)
	if err != nil {
		return c.failAttempt(rec, metric.PathReconnect, err)
	}

	req := channel.ReconnectRequest{
		StreamID:         rec.StreamID,
		Dimensions:       dims,
		StreamAttributes: attrs,
	}
	var resp channel.ReconnectResponse
	if err := conn.Request(h.ctx, channel.MethodReconnect, req, &resp); err != nil {
		return c.failAttempt(rec, metric.PathReconnect, err)
	}

	tok := c.tokenFrom(resp.Token)
	refresher := c.newRefresher(h, conn, tok)

	connected := &Connected{
		Resource:         rec.Resource,
		StreamID:         rec.StreamID,
		SceneViewID:      rec.SceneViewID,
		SessionID:        rec.SessionID,
		Token:            tok,
		Frame:            rec.Frame,
		Clock:            sample,
		WorldOrientation: rec.WorldOrientation,
		handle:           h,
	}
	if !c.transitionFrom(rec, connected) {
		refresher.Stop()
		h.dispose()
		return nil
	}
	if h.setRefresher(refresher) {
		refresher.Start()
	} else {
		refresher.Stop()
	}

	c.writeSessionHint(clientID, rec.SessionID, deviceID)

	c.drainBufferedFrames(h, firstFrame)

	c.logger.Info("stream reconnected", "stream_id", rec.StreamID, "generation", h.generation)
	return nil
}

// --- scene view switch path ---

// switchSceneView changes the view of a connected stream over the
// existing channel; the transport is never reopened for a refinement of
// the same stream.
func (c *Coordinator) switchSceneView(ctx context.Context, h *handle, res *resource.Resource) error {
	conn := h.connection()
	if conn == nil {
		return errors.ErrNotConnected
	}

	if id, ok := res.SceneViewStateID(); ok {
		err := conn.Request(ctx, channel.MethodLoadSceneViewState,
			channel.LoadSceneViewStateRequest{SceneViewStateID: id}, nil)
		if err != nil {
			return c.failConnected(h, err)
		}
		c.logger.Info("scene view switched", "scene_view_state_id", id)
	}

	if !c.replaceConnected(h, func(next *Connected) { next.Resource = res }) {
		return errors.ErrDisposed
	}
	return nil
}

// failConnected transitions the Connected state owned by h to
// ConnectionFailed, for failures of in-place operations on a live
// session.
func (c *Coordinator) failConnected(h *handle, err error) error {
	err = errors.Classify(err, errors.KindStreamRequestFailed, "stream request failed")

	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	if !ok || cur.handle != h {
		c.mu.Unlock()
		return err
	}
	c.commitLocked(&ConnectionFailed{Message: errors.MessageOf(err), Err: err})
	c.mu.Unlock()

	h.dispose()
	c.drain()
	c.logger.Warn("stream failed", "error", err)
	return err
}

// --- shared helpers ---

// dial opens a transport per the retry policy. Errors the taxonomy marks
// non-retryable abort the loop immediately.
func (c *Coordinator) dial(ctx context.Context, policy retry.Config) (channel.Connection, error) {
	return retry.DoWithResult(ctx, policy, func(ctx context.Context) (channel.Connection, error) {
		conn, err := c.channel.Connect(ctx, c.cfg.Descriptor, c.cfg.Settings)
		if err != nil && !errors.IsRetryable(err) {
			return nil, retry.NonRetryable(err)
		}
		return conn, err
	})
}

// attachHandlers wires the connection's pushed events and close signal to
// the coordinator, owned by h so disposal detaches them.
func (c *Coordinator) attachHandlers(h *handle, conn channel.Connection, firstFrame chan<- *channel.Frame) {
	subEvents := conn.OnEvent(func(ev channel.Event) {
		c.handleEvent(h, ev, firstFrame)
	})
	subClose := conn.OnClose(func(err error) {
		c.handleClose(h, err)
	})
	h.addSubs(subEvents, subClose)
}

func (c *Coordinator) handleEvent(h *handle, ev channel.Event, firstFrame chan<- *channel.Frame) {
	switch ev.Method {
	case channel.EventFrame:
		var f channel.Frame
		if err := json.Unmarshal(ev.Payload, &f); err != nil {
			c.logger.Warn("discarding malformed frame", "error", err)
			return
		}
		c.applyFrame(h, &f, firstFrame)
	case channel.EventRequestToReconnect:
		c.logger.Info("server requested graceful reconnect")
		c.reconnect(h, metric.TriggerGraceful)
	default:
		c.logger.Debug("ignoring unknown event", "method", ev.Method)
	}
}

// applyFrame merges and publishes a frame for the session owned by h.
// Frames arriving before the session reaches Connected are offered to the
// first-frame waiter instead.
func (c *Coordinator) applyFrame(h *handle, f *channel.Frame, firstFrame chan<- *channel.Frame) {
	var (
		merged  *channel.Frame
		carried bool
	)
	ok := c.replaceConnected(h, func(next *Connected) {
		merged, carried = mergeFrame(next.Frame, f)
		next.Frame = merged
	})
	if !ok {
		if firstFrame != nil {
			select {
			case firstFrame <- f:
			default:
			}
		}
		return
	}

	c.metrics.IncFrameReceived(carried)
	c.frames.Emit(merged)
	c.ackFrame(h, h.connection(), merged)
}

// handleClose starts the reconnect path when the transport of a live
// session closes underneath it. Closes of attempts still connecting are
// surfaced by the attempt's own request errors.
func (c *Coordinator) handleClose(h *handle, err error) {
	c.mu.Lock()
	cur, ok := c.state.(*Connected)
	owned := ok && cur.handle == h
	c.mu.Unlock()
	if !owned {
		return
	}
	c.logger.Warn("transport closed while connected", "error", err)
	c.reconnect(h, metric.TriggerClose)
}

// awaitFirstFrame waits for the server's first rendered frame.
func (c *Coordinator) awaitFirstFrame(h *handle, firstFrame <-chan *channel.Frame) (*channel.Frame, error) {
	timer := time.NewTimer(c.cfg.FrameTimeout)
	defer timer.Stop()

	select {
	case f := <-firstFrame:
		return f, nil
	case <-timer.C:
		return nil, errors.NewFrameRenderTimeout(
			fmt.Sprintf("no frame rendered within %s", c.cfg.FrameTimeout),
			errors.ErrFrameTimeout)
	case <-h.ctx.Done():
		return nil, errors.Classify(h.ctx.Err(), errors.KindTransportConnection,
			"connection attempt aborted")
	}
}

// drainBufferedFrames applies frames that arrived between the first-frame
// wait and the Connected transition. Frames buffered during that window
// have no live subscriber yet, so they are merged here instead.
func (c *Coordinator) drainBufferedFrames(h *handle, frames <-chan *channel.Frame) {
	for {
		select {
		case f := <-frames:
			c.applyFrame(h, f, nil)
		default:
			return
		}
	}
}

// syncClock samples the remote clock with a single round trip.
func (c *Coordinator) syncClock(ctx context.Context, conn channel.Connection) (clock.Synchronized, error) {
	local := time.Now()
	var resp channel.SyncTimeResponse
	err := conn.Request(ctx, channel.MethodSyncTime,
		channel.SyncTimeRequest{RequestTime: clock.ToUnixMs(local)}, &resp)
	if err != nil {
		return clock.Synchronized{}, err
	}
	return clock.NewSynchronized(local, clock.FromUnixMs(resp.ReplyTime)), nil
}

// newRefresher builds the self-rescheduling token refresher for a
// connection. Refreshed tokens replace the Connected state's token in
// place.
func (c *Coordinator) newRefresher(h *handle, conn channel.Connection, tok token.Token) *token.Refresher {
	cfg := token.DefaultRefresherConfig()
	cfg.Offset = c.cfg.TokenRefreshOffset
	cfg.Logger = c.logger
	cfg.OnToken = func(next token.Token) {
		c.metrics.IncTokenRefresh(true)
		c.replaceConnected(h, func(s *Connected) { s.Token = next })
	}
	return token.NewRefresher(tok, func(ctx context.Context) (token.Token, error) {
		var resp channel.RefreshTokenResponse
		if err := conn.Request(ctx, channel.MethodRefreshToken, nil, &resp); err != nil {
			c.metrics.IncTokenRefresh(false)
			return token.Token{}, err
		}
		return c.tokenFrom(resp.Token), nil
	}, cfg)
}

// ackFrame confirms frame delivery. Fire-and-forget: a failed ack only
// logs.
func (c *Coordinator) ackFrame(h *handle, conn channel.Connection, f *channel.Frame) {
	if conn == nil || f == nil {
		return
	}
	ack := channel.AcknowledgeFrameRequest{
		FrameCorrelationID: f.FrameCorrelationID,
		SequenceNumber:     f.SequenceNumber,
	}
	if err := conn.Send(h.ctx, channel.MethodAcknowledgeFrame, ack); err != nil {
		c.logger.Debug("frame acknowledgement failed", "error", err)
	}
}

// readSessionHint fetches the cached session id for clientID. Cache
// failures degrade to "no hint".
func (c *Coordinator) readSessionHint(ctx context.Context, clientID string) string {
	if c.cache == nil || clientID == "" {
		return ""
	}
	entry, err := c.cache.Get(ctx, clientID)
	if err != nil {
		if !stderrors.Is(err, sessioncache.ErrNotFound) {
			c.logger.Debug("session cache read failed", "error", err)
		}
		return ""
	}
	return entry.SessionID
}

// writeSessionHint persists the confirmed session id for clientID.
func (c *Coordinator) writeSessionHint(clientID, sessionID, deviceID string) {
	if c.cache == nil || clientID == "" || sessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.cache.Put(ctx, clientID, sessioncache.Entry{
		SessionID: sessionID,
		DeviceID:  deviceID,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		c.logger.Debug("session cache write failed", "error", err)
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// tokenFrom builds a token from the server's credential payload. When the
// payload omits the lifetime, the expiry is recovered from the JWT exp
// claim instead.
func (c *Coordinator) tokenFrom(payload channel.TokenPayload) token.Token {
	if payload.ExpiresIn > 0 {
		return token.New(payload.Token, secondsToDuration(payload.ExpiresIn))
	}
	tok, err := token.NewFromJWT(payload.Token)
	if err != nil {
		c.logger.Warn("token carries no lifetime and is not a parsable JWT", "error", err)
		return token.New(payload.Token, 0)
	}
	return tok
}
