package observability

import (
	"context"
	"testing"
	"time"
)

type countingBuildHooks struct {
	NoopBuildHooks
	starts    int
	completes int
	fallbacks int
}

func (h *countingBuildHooks) OnBuildStart(context.Context, string, string) { h.starts++ }
func (h *countingBuildHooks) OnBuildComplete(context.Context, string, string, int, time.Duration, error) {
	h.completes++
}
func (h *countingBuildHooks) OnIncrementalFallback(context.Context, string, string) { h.fallbacks++ }

type countingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string, string)  { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string, string) { h.misses++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic
	Build().OnBuildStart(ctx, "repo", BuildModeFull)
	Build().OnBuildComplete(ctx, "repo", BuildModeFull, 10, time.Second, nil)
	Build().OnIncrementalFallback(ctx, "repo", "no candidates")
	Cache().OnCacheHit(ctx, "memory", "k")
	Cache().OnCacheMiss(ctx, "durable", "k")
	Cache().OnCacheSet(ctx, "memory", "k", 128)
	Cache().OnCacheEvict(ctx, "memory", "k", "capacity")
	Git().OnCommand(ctx, "/repo", []string{"log"})
	Git().OnCommandComplete(ctx, "/repo", []string{"log"}, time.Millisecond, nil)
}

func TestSetAndResetHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	bh := &countingBuildHooks{}
	ch := &countingCacheHooks{}
	SetBuildHooks(bh)
	SetCacheHooks(ch)

	ctx := context.Background()
	Build().OnBuildStart(ctx, "repo", BuildModeIncremental)
	Build().OnBuildComplete(ctx, "repo", BuildModeIncremental, 5, time.Second, nil)
	Build().OnIncrementalFallback(ctx, "repo", "not ancestor")
	Cache().OnCacheHit(ctx, "memory", "branchGraph:x")
	Cache().OnCacheMiss(ctx, "durable", "branchGraph:y")

	if bh.starts != 1 || bh.completes != 1 || bh.fallbacks != 1 {
		t.Errorf("build hook counts = %d/%d/%d, want 1/1/1", bh.starts, bh.completes, bh.fallbacks)
	}
	if ch.hits != 1 || ch.misses != 1 {
		t.Errorf("cache hook counts = %d/%d, want 1/1", ch.hits, ch.misses)
	}

	Reset()
	Build().OnBuildStart(ctx, "repo", BuildModeFull)
	if bh.starts != 1 {
		t.Error("Reset should restore no-op hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	bh := &countingBuildHooks{}
	SetBuildHooks(bh)
	SetBuildHooks(nil)

	Build().OnBuildStart(context.Background(), "repo", BuildModeFull)
	if bh.starts != 1 {
		t.Error("SetBuildHooks(nil) should not replace registered hooks")
	}
}
