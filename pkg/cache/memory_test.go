package cache

import (
	"fmt"
	"testing"
	"time"
)

func newTestMemory(capacity int) (*Memory, *time.Time) {
	m := NewMemory(capacity)
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryGetSet(t *testing.T) {
	m, _ := newTestMemory(10)

	if _, hit := m.Get("missing"); hit {
		t.Error("empty cache should miss")
	}

	m.Set("k", "v", time.Minute)
	v, hit := m.Get("k")
	if !hit {
		t.Fatal("expected hit")
	}
	if v.(string) != "v" {
		t.Errorf("value = %v, want v", v)
	}
}

func TestMemoryTTLBoundary(t *testing.T) {
	m, now := newTestMemory(10)

	const ttl = 10 * time.Second
	m.Set("k", 42, ttl)

	// One tick before expiry: hit with original value.
	*now = now.Add(ttl - time.Second)
	if v, hit := m.Get("k"); !hit || v.(int) != 42 {
		t.Errorf("read at created+T-1 = (%v, %v), want (42, true)", v, hit)
	}

	// One tick past expiry: miss and evicted.
	*now = now.Add(2 * time.Second)
	if _, hit := m.Get("k"); hit {
		t.Error("read at created+T+1 should miss")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be evicted, len = %d", m.Len())
	}
}

func TestMemoryCapacityEviction(t *testing.T) {
	m, _ := newTestMemory(100)

	for i := 0; i < 101; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i, time.Minute)
	}

	if m.Len() != 100 {
		t.Fatalf("len = %d, want 100", m.Len())
	}
	// Exactly the first-inserted entry is gone.
	if _, hit := m.Get("key-0"); hit {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i <= 100; i++ {
		if _, hit := m.Get(fmt.Sprintf("key-%d", i)); !hit {
			t.Errorf("key-%d should survive", i)
		}
	}
}

func TestMemoryResetDoesNotEvict(t *testing.T) {
	m, _ := newTestMemory(2)

	m.Set("a", 1, time.Minute)
	m.Set("b", 2, time.Minute)
	// Refreshing an existing key must not trigger capacity eviction.
	m.Set("a", 3, time.Minute)

	if m.Len() != 2 {
		t.Errorf("len = %d, want 2", m.Len())
	}
	if v, hit := m.Get("a"); !hit || v.(int) != 3 {
		t.Errorf("a = (%v, %v), want (3, true)", v, hit)
	}
	if _, hit := m.Get("b"); !hit {
		t.Error("b should survive a refresh of a")
	}
}

func TestMemoryInvalidate(t *testing.T) {
	m, _ := newTestMemory(10)

	m.Set(MemoryGraphKey("repo-a"), 1, time.Minute)
	m.Set(MemoryGraphKey("repo-b"), 2, time.Minute)
	m.Set("status:repo-a", 3, time.Minute)

	m.Invalidate(GraphKeyPrefix)
	if _, hit := m.Get(MemoryGraphKey("repo-a")); hit {
		t.Error("graph key should be invalidated")
	}
	if _, hit := m.Get(MemoryGraphKey("repo-b")); hit {
		t.Error("graph key should be invalidated")
	}
	if _, hit := m.Get("status:repo-a"); !hit {
		t.Error("non-matching key should survive")
	}

	m.Invalidate("")
	if m.Len() != 0 {
		t.Errorf("empty pattern should clear everything, len = %d", m.Len())
	}
}

func TestRepoID(t *testing.T) {
	if got := RepoID(""); got != NoWorkspaceRepoID {
		t.Errorf("RepoID(\"\") = %q, want %q", got, NoWorkspaceRepoID)
	}
	got := RepoID("/home/user/my repo")
	if got != "%2Fhome%2Fuser%2Fmy+repo" {
		t.Errorf("RepoID = %q", got)
	}
}

func TestKeys(t *testing.T) {
	if got := GraphKey("repo", "abc123"); got != "branchGraph:repo:abc123" {
		t.Errorf("GraphKey = %q", got)
	}
	if got := IndexKey("repo"); got != "branchGraphIndex:repo" {
		t.Errorf("IndexKey = %q", got)
	}
	if !IsGraphKey(GraphKey("repo", "abc")) {
		t.Error("GraphKey output should be in the graph namespace")
	}
	if IsGraphKey(IndexKey("repo")) {
		t.Error("IndexKey output should not be in the graph namespace")
	}
}
