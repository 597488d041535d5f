package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refreshRecorder counts refresh invocations and hands out tokens with a
// fixed expiry window.
type refreshRecorder struct {
	mu        sync.Mutex
	calls     int
	expiresIn time.Duration
	err       error
}

func (rr *refreshRecorder) refresh(_ context.Context) (Token, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.calls++
	if rr.err != nil {
		return Token{}, rr.err
	}
	return New("refreshed", rr.expiresIn), nil
}

func (rr *refreshRecorder) count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.calls
}

func TestRefresherFiresAtRemainingTime(t *testing.T) {
	rec := &refreshRecorder{expiresIn: time.Hour}
	got := make(chan Token, 1)

	// Initial token refreshes ~20ms from now (50ms expiry, 30ms offset).
	r := NewRefresher(New("initial", 50*time.Millisecond), rec.refresh, RefresherConfig{
		Offset:  30 * time.Millisecond,
		OnToken: func(tok Token) { got <- tok },
	})
	r.Start()
	defer r.Stop()

	select {
	case tok := <-got:
		assert.Equal(t, "refreshed", tok.Value)
	case <-time.After(time.Second):
		t.Fatal("refresh did not fire")
	}

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "refreshed", r.Token().Value)
}

func TestRefresherReschedulesWithNewExpiry(t *testing.T) {
	// Every refreshed token expires in 40ms with a 30ms offset, so refreshes
	// keep firing roughly every 10ms.
	rec := &refreshRecorder{expiresIn: 40 * time.Millisecond}
	r := NewRefresher(New("initial", 40*time.Millisecond), rec.refresh, RefresherConfig{
		Offset: 30 * time.Millisecond,
	})
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return rec.count() >= 3 },
		time.Second, 5*time.Millisecond)
}

func TestRefresherKeepsTokenOnFailure(t *testing.T) {
	rec := &refreshRecorder{err: errors.New("server unavailable")}
	r := NewRefresher(New("initial", 10*time.Millisecond), rec.refresh, RefresherConfig{
		Offset:       5 * time.Millisecond,
		FailureDelay: 10 * time.Millisecond,
	})
	r.Start()
	defer r.Stop()

	// Failures retry on the failure delay and never replace the token.
	require.Eventually(t, func() bool { return rec.count() >= 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, "initial", r.Token().Value)
}

func TestRefresherStopPreventsFurtherFires(t *testing.T) {
	rec := &refreshRecorder{expiresIn: time.Hour}
	r := NewRefresher(New("initial", time.Hour), rec.refresh, RefresherConfig{
		Offset: time.Hour - 10*time.Millisecond,
	})
	r.Start()
	r.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.count())

	// Stop is idempotent and Start after Stop is a no-op.
	r.Stop()
	r.Start()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestRefresherImmediateWhenAlreadyInsideWindow(t *testing.T) {
	rec := &refreshRecorder{expiresIn: time.Hour}
	r := NewRefresher(New("initial", time.Millisecond), rec.refresh, RefresherConfig{
		Offset: time.Minute,
	})
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return rec.count() >= 1 },
		time.Second, time.Millisecond)
}
