package token

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RefreshFunc requests a replacement credential from the server.
type RefreshFunc func(ctx context.Context) (Token, error)

// Refresher proactively renews a token before it expires. It arms a
// one-shot timer at RemainingTime(offset); when the timer fires it invokes
// the refresh function and re-arms itself with the new token's remaining
// time. The loop is unbounded and is torn down only by Stop, which the
// owning connection calls on disposal.
//
// A failed refresh is not fatal: the existing (possibly expired) token is
// kept and another attempt is scheduled after the failure delay.
type Refresher struct {
	offset       time.Duration
	failureDelay time.Duration
	refresh      RefreshFunc
	onToken      func(Token)
	logger       *slog.Logger

	mu      sync.Mutex
	token   Token
	timer   *time.Timer
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	// Offset is subtracted from the token expiry when scheduling, leaving
	// headroom for the refresh round trip.
	Offset time.Duration
	// FailureDelay is the retry delay after a failed refresh.
	FailureDelay time.Duration
	// OnToken is invoked with each successfully refreshed token.
	OnToken func(Token)
	// Logger receives refresh outcomes. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultRefresherConfig returns sensible defaults for token refresh.
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Offset:       30 * time.Second,
		FailureDelay: 5 * time.Second,
	}
}

// NewRefresher creates a Refresher for the given initial token. Start must
// be called to arm the first timer.
func NewRefresher(initial Token, refresh RefreshFunc, cfg RefresherConfig) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureDelay <= 0 {
		cfg.FailureDelay = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		offset:       cfg.Offset,
		failureDelay: cfg.FailureDelay,
		refresh:      refresh,
		onToken:      cfg.OnToken,
		logger:       logger,
		token:        initial,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start arms the refresh timer based on the current token's remaining time.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.armLocked(r.token.RemainingTime(r.offset))
}

// Stop cancels the timer and any in-flight refresh. After Stop, the
// refresher never fires again.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.cancel()
}

// Token returns the most recently held token.
func (r *Refresher) Token() Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// armLocked schedules the next fire. A non-positive delay means the token
// is already within the refresh window, so fire immediately.
func (r *Refresher) armLocked(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	r.timer = time.AfterFunc(delay, r.fire)
}

func (r *Refresher) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	ctx := r.ctx
	r.mu.Unlock()

	next, err := r.refresh(ctx)

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.logger.Warn("token refresh failed, keeping existing token",
			"error", err, "retry_in", r.failureDelay)
		r.armLocked(r.failureDelay)
		r.mu.Unlock()
		return
	}

	r.token = next
	r.logger.Debug("token refreshed", "expires_at", next.ExpiresAt)
	r.armLocked(next.RemainingTime(r.offset))
	onToken := r.onToken
	r.mu.Unlock()

	// Deliver outside the lock so the callback may read the refresher.
	if onToken != nil {
		onToken(next)
	}
}
