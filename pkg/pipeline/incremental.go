package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/observability"
)

const (
	// maxIncrementalCandidates bounds how many snapshot heads are tried
	// before giving up on an incremental path.
	maxIncrementalCandidates = 10

	// capacityNumerator/capacityDenominator express the 90% threshold: a
	// base graph already this close to the commit limit is not worth
	// extending.
	capacityNumerator   = 9
	capacityDenominator = 10
)

// incrementalBuild tries to extend a stored snapshot with only the
// commits added since it was taken. Candidates come from the snapshot
// index, newest first. Any single-candidate failure moves on to the next
// candidate; (nil, false) tells the caller to run a full rebuild.
func (s *Service) incrementalBuild(ctx context.Context, repoID, head string) (*commitgraph.Graph, bool) {
	candidates := s.snapshots.Candidates(ctx, repoID)
	if len(candidates) > maxIncrementalCandidates {
		candidates = candidates[:maxIncrementalCandidates]
	}

	for _, base := range candidates {
		if base == head {
			// Equal heads would have hit the durable tier already.
			continue
		}

		baseGraph, hit := s.snapshots.Graph(ctx, repoID, base)
		if !hit {
			observability.Build().OnIncrementalFallback(ctx, repoID, "snapshot-load")
			continue
		}
		if baseGraph.NodeCount()*capacityDenominator >= s.limit*capacityNumerator {
			observability.Build().OnIncrementalFallback(ctx, repoID, "near-capacity")
			continue
		}
		if !s.repo.IsAncestor(ctx, base, head) {
			observability.Build().OnIncrementalFallback(ctx, repoID, "not-ancestor")
			continue
		}

		start := time.Now()
		observability.Build().OnBuildStart(ctx, repoID, "incremental")

		raw, err := s.repo.LogRange(ctx, base, head)
		if err != nil {
			s.logger.Debug("incremental log failed", "base", base, "err", err)
			observability.Build().OnIncrementalFallback(ctx, repoID, "log-range")
			continue
		}

		merged := mergeNodes(commitgraph.ParseLog(raw), baseGraph)
		if len(merged) == 0 {
			observability.Build().OnIncrementalFallback(ctx, repoID, "empty-result")
			continue
		}
		commitgraph.EnforceLimit(merged, s.limit)

		summary, err := s.repo.Branches(ctx)
		if err != nil {
			s.logger.Debug("branch summary failed during incremental", "err", err)
			observability.Build().OnIncrementalFallback(ctx, repoID, "branch-summary")
			continue
		}

		g := commitgraph.Assemble(merged, summary.Current, summary.All, history.Merges(ctx, s.events, repoID))
		observability.Build().OnBuildComplete(ctx, repoID, "incremental", g.NodeCount(), time.Since(start), nil)
		return g, true
	}

	return nil, false
}

// mergeNodes combines freshly fetched commits with a base snapshot. New
// commits take precedence; base nodes not present in the delta are
// carried forward with their original parents and timestamp, wrapped in a
// fresh branch set so the two graphs never share mutable state.
func mergeNodes(fresh map[string]*commitgraph.CommitNode, base *commitgraph.Graph) map[string]*commitgraph.CommitNode {
	merged := make(map[string]*commitgraph.CommitNode, len(fresh)+base.NodeCount())
	for hash, n := range fresh {
		merged[hash] = n
	}
	for hash, n := range base.NodeSet() {
		if _, exists := merged[hash]; exists {
			continue
		}
		merged[hash] = n
	}
	return merged
}
