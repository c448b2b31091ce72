package commitgraph

import (
	"fmt"
	"testing"
)

func setOfSize(n int) map[string]*CommitNode {
	nodes := make(map[string]*CommitNode, n)
	for i := 0; i < n; i++ {
		hash := fmt.Sprintf("h%04d", i)
		nodes[hash] = &CommitNode{
			Hash:      hash,
			Branches:  make(BranchSet),
			Timestamp: int64(i) * 1000,
		}
	}
	return nodes
}

func TestEnforceLimitNoop(t *testing.T) {
	nodes := setOfSize(10)
	EnforceLimit(nodes, 10)
	if len(nodes) != 10 {
		t.Errorf("len = %d, want 10", len(nodes))
	}
	EnforceLimit(nodes, 100)
	if len(nodes) != 10 {
		t.Errorf("len = %d, want 10", len(nodes))
	}
}

func TestEnforceLimitKeepsMostRecent(t *testing.T) {
	nodes := setOfSize(10)
	EnforceLimit(nodes, 3)

	if len(nodes) != 3 {
		t.Fatalf("len = %d, want 3", len(nodes))
	}
	// The three newest timestamps survive.
	for _, hash := range []string{"h0007", "h0008", "h0009"} {
		if nodes[hash] == nil {
			t.Errorf("%s should survive", hash)
		}
	}
}

func TestEnforceLimitMonotone(t *testing.T) {
	// Decreasing the limit can only remove entries, never add.
	a := setOfSize(50)
	b := setOfSize(50)

	EnforceLimit(a, 30)
	EnforceLimit(b, 20)

	for hash := range b {
		if a[hash] == nil {
			t.Errorf("entry %s kept at limit 20 but evicted at limit 30", hash)
		}
	}
}

func TestEnforceLimitDeterministicTies(t *testing.T) {
	build := func() map[string]*CommitNode {
		nodes := make(map[string]*CommitNode)
		for _, hash := range []string{"cc", "aa", "bb", "dd"} {
			nodes[hash] = &CommitNode{Hash: hash, Timestamp: 1000}
		}
		return nodes
	}

	a, b := build(), build()
	EnforceLimit(a, 2)
	EnforceLimit(b, 2)

	if len(a) != 2 {
		t.Fatalf("len = %d, want 2", len(a))
	}
	for hash := range a {
		if b[hash] == nil {
			t.Error("tie-breaking should be deterministic across runs")
		}
	}
}
