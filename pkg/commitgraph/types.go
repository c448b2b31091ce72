// Package commitgraph turns raw git-log output into the exported branch
// graph model: commit nodes, DAG edges, and detected merges.
//
// The package is pure data transformation. It never runs git and never
// touches storage; raw log text comes in, a Graph comes out. This is what
// makes the pipeline's caching and incremental update layers testable.
package commitgraph

import (
	"slices"
)

// DefaultCommitLimit caps the working set of commit nodes.
const DefaultCommitLimit = 800

// MergeType tags how a merge happened.
type MergeType string

const (
	// MergeThreeWay is a merge commit with two distinct parent lineages.
	MergeThreeWay MergeType = "three-way"

	// MergeFastForward is a branch pointer advance with no merge commit.
	// Fast-forward merges leave no distinguishing commit, so they can only
	// be known from externally recorded merge events.
	MergeFastForward MergeType = "fast-forward"
)

// BranchSet is a set of branch names attached to a commit.
type BranchSet map[string]bool

// Has reports membership.
func (s BranchSet) Has(name string) bool { return s[name] }

// Add inserts a branch name.
func (s BranchSet) Add(name string) { s[name] = true }

// Clone returns an independent copy of the set.
func (s BranchSet) Clone() BranchSet {
	out := make(BranchSet, len(s))
	for name := range s {
		out[name] = true
	}
	return out
}

// Names returns the sorted branch names.
func (s BranchSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CommitNode is one commit in the working set.
//
// Every parent hash that exists in the same working set must be a key in
// that set; a parent absent from the set is an unknown ancestor, i.e. the
// graph boundary. Nodes are created by ParseLog, may gain branch
// memberships when an incremental delta is merged over a base set, and are
// never mutated after assembly.
type CommitNode struct {
	// Hash is the commit's unique identity.
	Hash string `json:"hash" bson:"hash"`

	// Parents holds parent hashes in order: none for a root commit, one
	// for a normal commit, two or more for a merge.
	Parents []string `json:"parents" bson:"parents"`

	// Branches is the set of local branch names pointing at or containing
	// this commit.
	Branches BranchSet `json:"branches" bson:"branches"`

	// Timestamp is the committer time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp" bson:"timestamp"`
}

// IsMerge reports whether the commit has at least two parents.
func (c *CommitNode) IsMerge() bool { return len(c.Parents) >= 2 }

// Merge is one detected or recorded merge relationship.
type Merge struct {
	From        string    `json:"from" bson:"from"`
	To          string    `json:"to" bson:"to"`
	Commit      string    `json:"commit,omitempty" bson:"commit,omitempty"`
	Type        MergeType `json:"type" bson:"type"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`

	// Timestamp is in milliseconds since epoch, zero when unknown.
	Timestamp int64 `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// Edge is one DAG edge, pointing from a parent commit to its child.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Graph is the exported branch graph model.
//
// A Graph is produced fresh by every build, full or incremental, and is
// immutable once returned: later builds supersede it, never edit it.
type Graph struct {
	// Branches lists the local branch names.
	Branches []string `json:"branches" bson:"branches"`

	// Current is the checked-out branch name, empty on a detached HEAD.
	Current string `json:"current,omitempty" bson:"current,omitempty"`

	// Merges holds the detected three-way merges, at most one per
	// (from, to) branch pair.
	Merges []Merge `json:"merges" bson:"merges"`

	// Nodes holds the commits ordered newest-first by timestamp.
	Nodes []CommitNode `json:"nodes" bson:"nodes"`

	// Edges holds one entry per (parent, commit) pair, including edges to
	// unknown ancestors at the graph boundary.
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of commits in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of parent links in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// HeadOf returns the newest commit hash, or empty for an empty graph.
func (g *Graph) HeadOf() string {
	if len(g.Nodes) == 0 {
		return ""
	}
	return g.Nodes[0].Hash
}

// NodeSet rebuilds the hash-keyed working set from the graph's node list.
// Branch sets are cloned so the returned map can be merged into without
// mutating the graph.
func (g *Graph) NodeSet() map[string]*CommitNode {
	nodes := make(map[string]*CommitNode, len(g.Nodes))
	for i := range g.Nodes {
		n := g.Nodes[i]
		nodes[n.Hash] = &CommitNode{
			Hash:      n.Hash,
			Parents:   slices.Clone(n.Parents),
			Branches:  n.Branches.Clone(),
			Timestamp: n.Timestamp,
		}
	}
	return nodes
}
