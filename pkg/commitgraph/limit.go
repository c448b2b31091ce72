package commitgraph

import (
	"cmp"
	"slices"
)

// EnforceLimit trims the working set in place until it holds at most max
// commits, keeping the most recent ones.
//
// Eviction is keyed on the commit timestamp, oldest evicted first, not on
// map insertion order: incremental updates merge older base commits after
// newer delta commits, so insertion order is not recency order. Ties are
// broken by hash so the result is deterministic. A set already within the
// limit is left untouched.
func EnforceLimit(nodes map[string]*CommitNode, max int) {
	if max <= 0 || len(nodes) <= max {
		return
	}

	hashes := make([]string, 0, len(nodes))
	for hash := range nodes {
		hashes = append(hashes, hash)
	}
	slices.SortFunc(hashes, func(a, b string) int {
		if c := cmp.Compare(nodes[b].Timestamp, nodes[a].Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	for _, hash := range hashes[max:] {
		delete(nodes, hash)
	}
}
