package sessioncache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()

	_, err := store.Get(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)

	want := Entry{SessionID: "sess-abc", DeviceID: "dev-1", UpdatedAt: time.Now()}
	require.NoError(t, store.Put(ctx, "client-1", want))

	got, err := store.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.DeviceID, got.DeviceID)

	// Entries are per client.
	_, err = store.Get(ctx, "client-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReplace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "client-1", Entry{SessionID: "old"}))
	require.NoError(t, store.Put(ctx, "client-1", Entry{SessionID: "new"}))

	got, err := store.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.SessionID)
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(20 * time.Millisecond)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "client-1", Entry{SessionID: "sess"}))

	_, err := store.Get(ctx, "client-1")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = store.Get(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "client-1", Entry{SessionID: "sess"}))
	require.NoError(t, store.Delete(ctx, "client-1"))

	_, err := store.Get(ctx, "client-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing entry is not an error.
	assert.NoError(t, store.Delete(ctx, "client-1"))
}
