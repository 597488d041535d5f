package channeltest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/errors"
)

func dial(t *testing.T) *Connection {
	t.Helper()
	conn, err := New().Connect(context.Background(), channel.Descriptor{}, channel.Settings{})
	require.NoError(t, err)
	return conn.(*Connection)
}

// A close listener that closes the connection again must return instead
// of blocking: the session coordinator disposes a failed connection from
// inside its close notification.
func TestCloseFromCloseListener(t *testing.T) {
	conn := dial(t)

	var got []error
	conn.OnClose(func(err error) {
		got = append(got, err)
		_ = conn.Close()
		conn.FailWith(errors.ErrConnectionLost)
	})

	done := make(chan struct{})
	go func() {
		conn.FailWith(errors.ErrConnectionLost)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("FailWith did not return")
	}

	assert.True(t, conn.Closed())
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], errors.ErrConnectionLost)
}

func TestCloseAfterFailWithDoesNotRenotify(t *testing.T) {
	conn := dial(t)

	var notifications int
	conn.OnClose(func(error) { notifications++ })

	conn.FailWith(errors.ErrConnectionLost)
	require.NoError(t, conn.Close())

	assert.Equal(t, 1, notifications)
	assert.True(t, conn.Closed())
}
