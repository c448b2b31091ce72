package commitgraph

import (
	"strconv"
	"strings"
	"time"
)

// Record layout produced by `git log --format=%H%x00%P%x00%D%x00%ct`:
// one record per line, four NUL-separated fields.
const (
	fieldHash = iota
	fieldParents
	fieldRefs
	fieldTimestamp
	fieldCount
)

const branchRefPrefix = "refs/heads/"

// nowMillis is swappable so tests can pin the fallback timestamp.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// ParseLog converts raw delimited git-log text into a working set of
// commit nodes keyed by hash.
//
// The parse is forgiving: blank lines, records with fewer than four
// fields, and records with an empty hash are skipped rather than failing
// the whole parse. Ref decorations are filtered to local branches
// (refs/heads/*); tags and remotes are ignored. A missing or unparsable
// timestamp defaults to now. The transformation is pure apart from that
// clock read.
func ParseLog(raw string) map[string]*CommitNode {
	nodes := make(map[string]*CommitNode)

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) < fieldCount {
			continue
		}
		hash := strings.TrimSpace(fields[fieldHash])
		if hash == "" {
			continue
		}

		nodes[hash] = &CommitNode{
			Hash:      hash,
			Parents:   strings.Fields(fields[fieldParents]),
			Branches:  parseBranchRefs(fields[fieldRefs]),
			Timestamp: parseTimestamp(fields[fieldTimestamp]),
		}
	}

	return nodes
}

// parseBranchRefs extracts local branch names from a %D decoration such as
// "HEAD -> refs/heads/main, refs/heads/dev, tag: refs/tags/v1".
func parseBranchRefs(decoration string) BranchSet {
	branches := make(BranchSet)
	for _, ref := range strings.Split(decoration, ",") {
		ref = strings.TrimSpace(ref)
		// "HEAD -> refs/heads/main" marks the checked-out branch.
		if idx := strings.Index(ref, "-> "); idx >= 0 {
			ref = ref[idx+len("-> "):]
		}
		if strings.HasPrefix(ref, branchRefPrefix) {
			branches.Add(strings.TrimPrefix(ref, branchRefPrefix))
		}
	}
	return branches
}

// parseTimestamp converts a unix-seconds field to milliseconds,
// defaulting to now when absent or unparsable.
func parseTimestamp(field string) int64 {
	seconds, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil || seconds < 0 {
		return nowMillis()
	}
	return seconds * 1000
}
