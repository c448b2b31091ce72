// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph builds, cache operations, and git invocations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, repoID, mode)
//	// ... build the graph ...
//	observability.Build().OnBuildComplete(ctx, repoID, mode, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Build modes reported by BuildHooks.
const (
	BuildModeFull        = "full"
	BuildModeIncremental = "incremental"
	BuildModeLayout      = "layout"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from graph construction and layout.
type BuildHooks interface {
	// OnBuildStart records the beginning of a graph build.
	// Mode is one of BuildModeFull, BuildModeIncremental, or BuildModeLayout.
	OnBuildStart(ctx context.Context, repoID, mode string)

	// OnBuildComplete records the end of a graph build.
	OnBuildComplete(ctx context.Context, repoID, mode string, nodeCount int, duration time.Duration, err error)

	// OnIncrementalFallback records an incremental attempt that fell back
	// to a full rebuild, with the reason it could not be used.
	OnIncrementalFallback(ctx context.Context, repoID, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit. Tier is "memory" or "durable".
	OnCacheHit(ctx context.Context, tier, key string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, tier, key string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, tier, key string, size int)

	// OnCacheEvict records an eviction (capacity, TTL, or invalidation).
	OnCacheEvict(ctx context.Context, tier, key, reason string)
}

// =============================================================================
// Git Hooks
// =============================================================================

// GitHooks receives events from external git process invocations.
type GitHooks interface {
	// OnCommand records the start of a git subprocess.
	OnCommand(ctx context.Context, dir string, args []string)

	// OnCommandComplete records the result of a git subprocess.
	OnCommandComplete(ctx context.Context, dir string, args []string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, string) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopBuildHooks) OnIncrementalFallback(context.Context, string, string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string, string)          {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string, string)         {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, string, int)     {}
func (NoopCacheHooks) OnCacheEvict(context.Context, string, string, string) {}

// NoopGitHooks is a no-op implementation of GitHooks.
type NoopGitHooks struct{}

func (NoopGitHooks) OnCommand(context.Context, string, []string)                                {}
func (NoopGitHooks) OnCommandComplete(context.Context, string, []string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	gitHooks   GitHooks   = NoopGitHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any builds.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetGitHooks registers custom git hooks.
// This should be called once at application startup before any git invocations.
func SetGitHooks(h GitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gitHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Git returns the registered git hooks.
func Git() GitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gitHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
	gitHooks = NoopGitHooks{}
}
