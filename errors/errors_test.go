package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInvalidResourceLocator, "invalid-resource-locator"},
		{KindTransportConnection, "transport-connection"},
		{KindStreamRequestFailed, "stream-request-failed"},
		{KindFrameRenderTimeout, "frame-render-timeout"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")

	err := NewTransportConnection("unable to connect to rendering host", cause)
	assert.Equal(t, "unable to connect to rendering host: dial tcp: refused", err.Error())

	noCause := NewFrameRenderTimeout("no frame within 15s", nil)
	assert.Equal(t, "no frame within 15s", noCause.Error())

	noMessage := &Error{Kind: KindStreamRequestFailed, Err: cause}
	assert.Equal(t, "dial tcp: refused", noMessage.Error())

	bare := &Error{Kind: KindStreamRequestFailed}
	assert.Equal(t, "stream-request-failed", bare.Error())
}

func TestUnwrapPreservesCause(t *testing.T) {
	err := NewStreamRequestFailed("start stream rejected", ErrRequestRejected)

	require.True(t, stderrors.Is(err, ErrRequestRejected))

	wrapped := fmt.Errorf("load: %w", err)
	var e *Error
	require.True(t, stderrors.As(wrapped, &e))
	assert.Equal(t, KindStreamRequestFailed, e.Kind)
}

func TestIsMatchesByKind(t *testing.T) {
	a := NewTransportConnection("first", nil)
	b := NewTransportConnection("second", stderrors.New("other cause"))
	c := NewFrameRenderTimeout("timeout", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
	assert.False(t, stderrors.Is(a, stderrors.New("plain")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidResourceLocator,
		KindOf(NewInvalidResourceLocator("bad urn", nil)))
	assert.Equal(t, KindTransportConnection,
		KindOf(fmt.Errorf("wrapped: %w", NewTransportConnection("dial", nil))))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "bad urn", MessageOf(NewInvalidResourceLocator("bad urn", stderrors.New("detail"))))
	assert.Equal(t, "plain", MessageOf(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(NewTransportConnection("dial failed", nil)))
	assert.False(t, IsRetryable(NewInvalidResourceLocator("bad urn", nil)))
	assert.False(t, IsRetryable(NewStreamRequestFailed("rejected", nil)))
	assert.False(t, IsRetryable(NewFrameRenderTimeout("no frame", nil)))

	// Unclassified transport sentinels still retry.
	assert.True(t, IsRetryable(fmt.Errorf("read: %w", ErrConnectionLost)))
	assert.True(t, IsRetryable(ErrConnectionTimeout))
	assert.False(t, IsRetryable(stderrors.New("something else")))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Coordinator", "Load", "resolve"))

	err := Wrap(ErrConnectionLost, "Coordinator", "Load", "open transport")
	require.Error(t, err)
	assert.Equal(t, "Coordinator.Load: open transport failed: connection lost", err.Error())
	assert.True(t, stderrors.Is(err, ErrConnectionLost))
}

func TestClassifyPreservesExistingKind(t *testing.T) {
	assert.NoError(t, Classify(nil, KindTransportConnection, "x"))

	classified := NewStreamRequestFailed("rejected", nil)
	got := Classify(classified, KindTransportConnection, "ignored")
	assert.Equal(t, KindStreamRequestFailed, KindOf(got))

	plain := stderrors.New("dial refused")
	got = Classify(plain, KindTransportConnection, "unable to connect")
	assert.Equal(t, KindTransportConnection, KindOf(got))
	assert.True(t, stderrors.Is(got, plain))
}
