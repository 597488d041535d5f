package sessioncache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with optional TTL eviction. Suitable
// for single-process clients and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates a memory store. A zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached entry for clientID, or ErrNotFound. Expired
// entries are evicted lazily on access.
func (m *MemoryStore) Get(_ context.Context, clientID string) (Entry, error) {
	m.mu.RLock()
	me, ok := m.entries[clientID]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, ErrNotFound
	}
	if !me.expiresAt.IsZero() && time.Now().After(me.expiresAt) {
		m.mu.Lock()
		// Re-check: Put may have replaced the entry between locks.
		if cur, ok := m.entries[clientID]; ok && cur.expiresAt.Equal(me.expiresAt) {
			delete(m.entries, clientID)
		}
		m.mu.Unlock()
		return Entry{}, ErrNotFound
	}
	return me.entry, nil
}

// Put stores the entry for clientID.
func (m *MemoryStore) Put(_ context.Context, clientID string, entry Entry) error {
	me := memoryEntry{entry: entry}
	if m.ttl > 0 {
		me.expiresAt = time.Now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[clientID] = me
	m.mu.Unlock()
	return nil
}

// Delete removes the entry for clientID.
func (m *MemoryStore) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	delete(m.entries, clientID)
	m.mu.Unlock()
	return nil
}

// Close releases the store's entries.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
