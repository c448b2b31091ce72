package cache

import (
	"strings"
	"sync"
	"time"
)

// memoryEntry wraps a cached value with its creation time and TTL.
type memoryEntry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

// expired reports whether the entry is stale at time now.
func (e memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Memory is the short-TTL in-memory cache tier.
//
// Entries are checked against their TTL on read; stale entries are evicted
// and reported as misses. When the cache is full, Set evicts the single
// oldest entry (by insertion) before inserting. Invalidate clears all
// entries, or only those whose key contains a substring.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	order    []string // insertion order, oldest first
	capacity int

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewMemory creates a memory cache bounded to capacity entries.
// A capacity <= 0 falls back to DefaultMemoryCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached value for key if it is still within its TTL.
// A stale entry is evicted and reported as a miss.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(m.now()) {
		m.remove(key)
		return nil, false
	}
	return entry.value, true
}

// Set inserts a value with the given TTL, evicting the oldest entry first
// if the cache is at capacity. Re-setting an existing key refreshes its
// value and TTL without counting against capacity.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		if len(m.entries) >= m.capacity && len(m.order) > 0 {
			m.remove(m.order[0])
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = memoryEntry{value: value, createdAt: m.now(), ttl: ttl}
}

// Invalidate removes entries whose key contains pattern as a substring.
// An empty pattern clears the entire cache.
func (m *Memory) Invalidate(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pattern == "" {
		m.entries = make(map[string]memoryEntry)
		m.order = m.order[:0]
		return
	}

	kept := m.order[:0]
	for _, key := range m.order {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
		} else {
			kept = append(kept, key)
		}
	}
	m.order = kept
}

// Len returns the number of live entries, including any not yet expired-checked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// remove deletes key from both the map and the insertion-order list.
// Caller must hold mu.
func (m *Memory) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
