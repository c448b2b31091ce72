// Package pipeline orchestrates graph construction for one repository.
//
// A Service owns the two cache tiers and the rebuild machinery. Reads
// consult the layers strictly in order: memory cache, durable snapshot,
// incremental update, full rebuild; the first success short-circuits the
// rest. Every layer failure degrades to the next layer, and the full
// rebuild itself degrades to an empty graph, so GetGraph always returns a
// usable result.
//
// All state is owned by the Service instance. Serving several
// repositories means creating several Services; they share nothing.
package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/gitexec"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/snapshot"
)

// Service builds, caches and serves commit graphs for one repository.
type Service struct {
	repo      *gitexec.Repository
	memory    *cache.Memory
	snapshots *snapshot.Store
	events    history.Store
	logger    *log.Logger

	limit     int
	memoryTTL time.Duration

	// rebuildMu serializes rebuilds: at most one full or incremental
	// build runs at a time for this repository.
	rebuildMu sync.Mutex
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	// CommitLimit caps how many commits a graph holds.
	CommitLimit int

	// MemoryTTL is the freshness window of the memory tier.
	MemoryTTL time.Duration

	// Memory is the in-memory cache. Created when nil.
	Memory *cache.Memory

	// Snapshots is the durable tier. Disabled when nil.
	Snapshots *snapshot.Store

	// Events is the merge-event feed. Optional.
	Events history.Store

	// Logger receives debug output. Discarded when nil.
	Logger *log.Logger
}

// New creates a Service for the given repository.
func New(repo *gitexec.Repository, opts Options) *Service {
	if opts.CommitLimit <= 0 {
		opts.CommitLimit = commitgraph.DefaultCommitLimit
	}
	if opts.MemoryTTL <= 0 {
		opts.MemoryTTL = cache.DefaultMemoryTTL
	}
	if opts.Memory == nil {
		opts.Memory = cache.NewMemory(cache.DefaultMemoryCapacity)
	}
	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.New(cache.NewNullCache())
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Service{
		repo:      repo,
		memory:    opts.Memory,
		snapshots: opts.Snapshots,
		events:    opts.Events,
		logger:    opts.Logger,
		limit:     opts.CommitLimit,
		memoryTTL: opts.MemoryTTL,
	}
}

// GetGraph returns the repository's commit graph. With forceRefresh the
// cache layers are bypassed and a full rebuild runs unconditionally.
// GetGraph never fails: any error on the way degrades to the next layer,
// bottoming out at an empty graph.
func (s *Service) GetGraph(ctx context.Context, forceRefresh bool) *commitgraph.Graph {
	repoID := s.repo.ID()
	memKey := cache.MemoryGraphKey(repoID)

	if !forceRefresh {
		if g, ok := s.memoryGet(ctx, memKey); ok {
			return g
		}
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	// A concurrent request may have rebuilt while this one waited.
	if !forceRefresh {
		if g, ok := s.memoryGet(ctx, memKey); ok {
			return g
		}
	}

	head, headErr := s.repo.Head(ctx)
	if headErr != nil {
		s.logger.Debug("head lookup failed, doing full rebuild", "err", headErr)
	}

	if !forceRefresh && headErr == nil {
		if g, hit := s.snapshots.Graph(ctx, repoID, head); hit {
			s.memorySet(ctx, memKey, g)
			return g
		}
		if g, ok := s.incrementalBuild(ctx, repoID, head); ok {
			s.persist(ctx, repoID, head, memKey, g)
			return g
		}
	}

	g := s.fullBuild(ctx, repoID)
	if headErr == nil && g.NodeCount() > 0 {
		s.persist(ctx, repoID, head, memKey, g)
	} else {
		s.memorySet(ctx, memKey, g)
	}
	return g
}

// GetGraphSnapshot returns a cached graph if one exists, consulting only
// the memory and durable tiers. It never triggers a rebuild; when nothing
// is cached it returns nil.
func (s *Service) GetGraphSnapshot(ctx context.Context) *commitgraph.Graph {
	repoID := s.repo.ID()
	memKey := cache.MemoryGraphKey(repoID)

	if g, ok := s.memoryGet(ctx, memKey); ok {
		return g
	}

	head, err := s.repo.Head(ctx)
	if err != nil {
		return nil
	}
	if g, hit := s.snapshots.Graph(ctx, repoID, head); hit {
		s.memorySet(ctx, memKey, g)
		return g
	}
	return nil
}

// ClearGraphCache wipes the memory entries and the durable snapshots of
// this repository.
func (s *Service) ClearGraphCache(ctx context.Context) error {
	repoID := s.repo.ID()
	s.memory.Invalidate(repoID)
	return s.snapshots.Clear(ctx, repoID)
}

// Invalidate drops every branch-graph memory entry. External mutating git
// operations (commit, merge, checkout) call this so the next read rebuilds.
func (s *Service) Invalidate(reason string) {
	s.logger.Debug("invalidating graph cache", "reason", reason)
	s.memory.Invalidate(cache.GraphKeyPrefix)
}

// Limit returns the commit cap this service builds graphs under.
func (s *Service) Limit() int { return s.limit }

// Repo returns the repository this service is bound to.
func (s *Service) Repo() *gitexec.Repository { return s.repo }

// =============================================================================
// Build layers
// =============================================================================

// fullBuild scans the entire history. Subprocess failures yield an empty
// graph rather than an error.
func (s *Service) fullBuild(ctx context.Context, repoID string) *commitgraph.Graph {
	start := time.Now()
	observability.Build().OnBuildStart(ctx, repoID, "full")

	summary, err := s.repo.Branches(ctx)
	if err != nil {
		s.logger.Debug("branch summary failed", "err", err)
		summary = gitexec.BranchSummary{}
	}

	nodes := map[string]*commitgraph.CommitNode{}
	raw, err := s.repo.LogAll(ctx, s.limit)
	if err != nil {
		s.logger.Debug("git log failed, serving empty graph", "err", err)
	} else {
		nodes = commitgraph.ParseLog(raw)
	}
	commitgraph.EnforceLimit(nodes, s.limit)

	g := commitgraph.Assemble(nodes, summary.Current, summary.All, history.Merges(ctx, s.events, repoID))
	observability.Build().OnBuildComplete(ctx, repoID, "full", g.NodeCount(), time.Since(start), err)
	return g
}

func (s *Service) persist(ctx context.Context, repoID, head, memKey string, g *commitgraph.Graph) {
	if err := s.snapshots.Save(ctx, repoID, head, g); err != nil {
		// Storage failures never block serving the fresh result.
		s.logger.Debug("snapshot save failed", "err", err)
	}
	s.memorySet(ctx, memKey, g)
}

func (s *Service) memoryGet(ctx context.Context, key string) (*commitgraph.Graph, bool) {
	v, ok := s.memory.Get(key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "memory", key)
		return nil, false
	}
	g, ok := v.(*commitgraph.Graph)
	if !ok {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "memory", key)
	return g, true
}

func (s *Service) memorySet(ctx context.Context, key string, g *commitgraph.Graph) {
	s.memory.Set(key, g, s.memoryTTL)
	observability.Cache().OnCacheSet(ctx, "memory", key, g.NodeCount())
}
