package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is an in-process implementation of the Cache interface.
// It backs the durable tier when no persistence is configured, and serves
// as the store double in tests. Entries honor TTLs but are never swept in
// the background; stale entries are dropped on read.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiration
}

// Interface guard.
var _ Cache = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-process cache backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Get retrieves a value, dropping it if its TTL has passed.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a value with the given TTL. A zero TTL means no expiration.
func (m *MemoryBackend) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memEntry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close implements Cache. There is nothing to release.
func (m *MemoryBackend) Close() error {
	return nil
}
