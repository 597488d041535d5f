// Package sessioncache persists the last-known session identifiers for a
// client so a later connection can hint the server toward a faster
// handshake. The cache is advisory only: a miss, a stale entry, or a failed
// backend never blocks connecting.
package sessioncache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no entry exists for the client.
var ErrNotFound = errors.New("sessioncache: entry not found")

// Entry holds the session identifiers remembered for one client.
type Entry struct {
	SessionID string    `json:"session_id"`
	DeviceID  string    `json:"device_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a small persisted key/value map keyed by client id. It is read
// at connect time and written once a session id is confirmed by the server.
type Store interface {
	// Get returns the cached entry for clientID, or ErrNotFound.
	Get(ctx context.Context, clientID string) (Entry, error)

	// Put stores the entry for clientID, replacing any prior value.
	Put(ctx context.Context, clientID string, entry Entry) error

	// Delete removes the entry for clientID. Deleting a missing entry is
	// not an error.
	Delete(ctx context.Context, clientID string) error

	// Close releases backend resources.
	Close() error
}
