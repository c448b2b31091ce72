package commitgraph

import (
	"cmp"
	"slices"
)

// Assemble builds the exported Graph from an enforced working set and the
// repository's branch summary.
//
// Nodes are ordered newest-first by timestamp (hash as tie-break) so the
// result is deterministic and directly consumable by the lane layout.
// One edge is emitted per (parent, commit) pair, including parents outside
// the working set: those edges mark the graph boundary.
//
// recorded carries externally recorded merge events (typically
// fast-forward merges, which leave no commit to detect) and is reconciled
// into merge detection by the classifier.
func Assemble(nodes map[string]*CommitNode, current string, branches []string, recorded []Merge) *Graph {
	ordered := make([]CommitNode, 0, len(nodes))
	for _, node := range nodes {
		ordered = append(ordered, *node)
	}
	slices.SortFunc(ordered, func(a, b CommitNode) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})

	edges := make([]Edge, 0, len(ordered))
	for _, node := range ordered {
		for _, parent := range node.Parents {
			edges = append(edges, Edge{From: parent, To: node.Hash})
		}
	}

	return &Graph{
		Branches: slices.Clone(branches),
		Current:  current,
		Merges:   classifyMerges(ordered, nodes, current, branches, recorded),
		Nodes:    ordered,
		Edges:    edges,
	}
}
