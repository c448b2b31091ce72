// Package snapshot is the durable cache tier for branch graphs.
//
// Graphs are stored under (repository identity, head commit hash) in an
// abstract persistent key-value store, alongside a bounded, ordered index
// of the head hashes seen for each repository. The index is what lets the
// incremental updater locate a base snapshot to extend instead of
// rescanning full history.
package snapshot

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/observability"
)

// MaxIndexEntries bounds the per-repository head index. When a new head
// pushes the index past the bound, the oldest head is evicted from both
// the index and the store.
const MaxIndexEntries = 20

// Store reads and writes graph snapshots through a cache backend.
// The zero value is not usable; use New.
type Store struct {
	backend  cache.Cache
	maxHeads int
}

// New creates a snapshot store over the given backend.
// A nil backend degrades to a NullCache, disabling the durable tier.
func New(backend cache.Cache) *Store {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Store{backend: backend, maxHeads: MaxIndexEntries}
}

// Graph loads the snapshot stored for (repoID, headHash).
// A missing snapshot and a storage failure both report a miss; storage
// failures must never block computing a fresh result.
func (s *Store) Graph(ctx context.Context, repoID, headHash string) (*commitgraph.Graph, bool) {
	key := cache.GraphKey(repoID, headHash)
	data, hit, err := s.backend.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "durable", key)
		return nil, false
	}

	g, err := commitgraph.UnmarshalGraph(data)
	if err != nil {
		// Corrupt snapshot: drop it so the index entry becomes a plain miss.
		_ = s.backend.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "durable", key)
		return nil, false
	}

	observability.Cache().OnCacheHit(ctx, "durable", key)
	return g, true
}

// Save stores a graph snapshot under (repoID, headHash) and registers the
// head in the repository's index. If the head is already indexed the index
// is left untouched; if the index exceeds its bound, the oldest head is
// evicted from the index and its snapshot deleted.
func (s *Store) Save(ctx context.Context, repoID, headHash string, g *commitgraph.Graph) error {
	data, err := commitgraph.MarshalGraph(g)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal graph for %s", headHash)
	}

	key := cache.GraphKey(repoID, headHash)
	if err := s.backend.Set(ctx, key, data, cache.DefaultSnapshotTTL); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store snapshot %s", headHash)
	}
	observability.Cache().OnCacheSet(ctx, "durable", key, len(data))

	heads := s.Heads(ctx, repoID)
	for _, h := range heads {
		if h == headHash {
			return nil
		}
	}
	heads = append(heads, headHash)
	for len(heads) > s.maxHeads {
		evicted := heads[0]
		heads = heads[1:]
		evictedKey := cache.GraphKey(repoID, evicted)
		_ = s.backend.Delete(ctx, evictedKey)
		observability.Cache().OnCacheEvict(ctx, "durable", evictedKey, "index-bound")
	}
	return s.saveHeads(ctx, repoID, heads)
}

// Heads returns the repository's known head hashes in insertion order,
// oldest first. Storage failures report an empty index.
func (s *Store) Heads(ctx context.Context, repoID string) []string {
	data, hit, err := s.backend.Get(ctx, cache.IndexKey(repoID))
	if err != nil || !hit {
		return nil
	}
	var heads []string
	if err := json.Unmarshal(data, &heads); err != nil {
		return nil
	}
	return heads
}

// Candidates returns the known head hashes most-recently-added first,
// the order in which the incremental updater should try them.
func (s *Store) Candidates(ctx context.Context, repoID string) []string {
	heads := s.Heads(ctx, repoID)
	out := make([]string, 0, len(heads))
	for i := len(heads) - 1; i >= 0; i-- {
		out = append(out, heads[i])
	}
	return out
}

// Clear removes every stored snapshot for the repository and resets its
// index to empty.
func (s *Store) Clear(ctx context.Context, repoID string) error {
	for _, head := range s.Heads(ctx, repoID) {
		if err := s.backend.Delete(ctx, cache.GraphKey(repoID, head)); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %s", head)
		}
	}
	if err := s.backend.Delete(ctx, cache.IndexKey(repoID)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot index")
	}
	return nil
}

func (s *Store) saveHeads(ctx context.Context, repoID string, heads []string) error {
	data, err := json.Marshal(heads)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal snapshot index")
	}
	if err := s.backend.Set(ctx, cache.IndexKey(repoID), data, cache.DefaultSnapshotTTL); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store snapshot index")
	}
	return nil
}
