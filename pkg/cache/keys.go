package cache

import (
	"net/url"
	"strings"
)

// Key prefixes for the persistent store.
const (
	// GraphKeyPrefix namespaces serialized graph snapshots.
	GraphKeyPrefix = "branchGraph"

	// IndexKeyPrefix namespaces snapshot head-hash indexes.
	IndexKeyPrefix = "branchGraphIndex"
)

// NoWorkspaceRepoID is the repository identity used when no workspace root
// is available.
const NoWorkspaceRepoID = "no-workspace"

// RepoID derives a repository identity from its workspace root path.
// The path is percent-encoded so it can be embedded in cache keys without
// colliding with the key separator.
func RepoID(workspaceRoot string) string {
	if workspaceRoot == "" {
		return NoWorkspaceRepoID
	}
	return url.QueryEscape(workspaceRoot)
}

// GraphKey returns the durable-store key for a graph snapshot anchored at
// headHash: "branchGraph:<repoId>:<headHash>".
func GraphKey(repoID, headHash string) string {
	return GraphKeyPrefix + ":" + repoID + ":" + headHash
}

// IndexKey returns the durable-store key for a repository's snapshot index:
// "branchGraphIndex:<repoId>".
func IndexKey(repoID string) string {
	return IndexKeyPrefix + ":" + repoID
}

// MemoryGraphKey returns the memory-tier key for a repository's branch graph.
// All memory keys for graph results share the GraphKeyPrefix so that a single
// Invalidate(GraphKeyPrefix) call clears every graph kind at once.
func MemoryGraphKey(repoID string) string {
	return GraphKeyPrefix + ":" + repoID
}

// IsGraphKey reports whether key belongs to the branch-graph namespace.
func IsGraphKey(key string) bool {
	return strings.HasPrefix(key, GraphKeyPrefix+":")
}
