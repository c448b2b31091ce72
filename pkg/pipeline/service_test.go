package pipeline

import (
	"context"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/gitexec"
	"github.com/matzehuels/gitlanes/pkg/snapshot"
)

const logArgs = "--topo-order --date-order --format=%H%x00%P%x00%D%x00%ct --decorate=full"

// fullLog is the command a full rebuild issues at the default commit limit.
const fullLog = "log --all --max-count=800 " + logArgs

func branchOutput() string {
	return "* main\n  feature\n"
}

// logAt scripts history with head aaaa (one commit).
func logAt1() string {
	return "aaaa\x00\x00HEAD -> refs/heads/main\x001000\n"
}

// logAt2 scripts history with head bbbb on top of aaaa.
func logAt2() string {
	return "bbbb\x00aaaa\x00HEAD -> refs/heads/main\x001100\n" + logAt1()
}

func newService(script *gitexec.Script, backend cache.Cache) *Service {
	repo := gitexec.NewRepository("/work/repo", script)
	return New(repo, Options{Snapshots: snapshot.New(backend)})
}

func TestGetGraphFullRebuild(t *testing.T) {
	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, cache.NewMemoryBackend())

	g := svc.GetGraph(context.Background(), false)

	if g.NodeCount() != 1 || g.HeadOf() != "aaaa" {
		t.Fatalf("graph = %d nodes head %q", g.NodeCount(), g.HeadOf())
	}
	if g.Current != "main" {
		t.Errorf("current = %q", g.Current)
	}
	if script.CallCount("log --all") != 1 {
		t.Errorf("full log runs = %d, want 1", script.CallCount("log --all"))
	}
}

func TestGetGraphMemoryHit(t *testing.T) {
	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, cache.NewMemoryBackend())
	ctx := context.Background()

	first := svc.GetGraph(ctx, false)
	second := svc.GetGraph(ctx, false)

	if first != second {
		t.Error("second read should come from the memory tier")
	}
	if script.CallCount("log") != 1 {
		t.Errorf("git log runs = %d, want 1", script.CallCount("log"))
	}
}

func TestGetGraphDurableHit(t *testing.T) {
	backend := cache.NewMemoryBackend()
	ctx := context.Background()

	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	newService(script, backend).GetGraph(ctx, false)

	// Fresh service, fresh memory tier, same durable backend.
	script2 := gitexec.NewScript().On("rev-parse HEAD", "aaaa\n")
	svc2 := newService(script2, backend)

	g := svc2.GetGraph(ctx, false)
	if g.HeadOf() != "aaaa" {
		t.Fatalf("head = %q, want aaaa", g.HeadOf())
	}
	if script2.CallCount("log") != 0 {
		t.Errorf("durable hit must not run git log, ran %d", script2.CallCount("log"))
	}
}

func TestGetGraphForceRefresh(t *testing.T) {
	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, cache.NewMemoryBackend())
	ctx := context.Background()

	svc.GetGraph(ctx, false)
	svc.GetGraph(ctx, true)

	if script.CallCount("log --all") != 2 {
		t.Errorf("force refresh should rebuild, log runs = %d", script.CallCount("log --all"))
	}
}

func TestGetGraphDegradesToEmpty(t *testing.T) {
	// Nothing is scripted: every git call fails.
	svc := newService(gitexec.NewScript(), cache.NewMemoryBackend())

	g := svc.GetGraph(context.Background(), false)

	if g == nil {
		t.Fatal("GetGraph must never return nil")
	}
	if g.NodeCount() != 0 {
		t.Errorf("nodes = %d, want 0", g.NodeCount())
	}
}

func TestGetGraphSnapshotNeverRebuilds(t *testing.T) {
	script := gitexec.NewScript().On("rev-parse HEAD", "aaaa\n")
	svc := newService(script, cache.NewMemoryBackend())

	if g := svc.GetGraphSnapshot(context.Background()); g != nil {
		t.Errorf("cold caches should yield nil, got %+v", g)
	}
	if script.CallCount("log") != 0 {
		t.Error("snapshot read must not run git log")
	}
}

func TestGetGraphSnapshotServesCached(t *testing.T) {
	backend := cache.NewMemoryBackend()
	ctx := context.Background()

	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, backend)
	svc.GetGraph(ctx, false)

	g := svc.GetGraphSnapshot(ctx)
	if g == nil || g.HeadOf() != "aaaa" {
		t.Errorf("snapshot = %+v, want cached graph at aaaa", g)
	}
}

func TestClearGraphCache(t *testing.T) {
	backend := cache.NewMemoryBackend()
	ctx := context.Background()

	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, backend)
	svc.GetGraph(ctx, false)

	if err := svc.ClearGraphCache(ctx); err != nil {
		t.Fatalf("ClearGraphCache: %v", err)
	}
	if g := svc.GetGraphSnapshot(ctx); g != nil {
		t.Errorf("cache should be empty after clear, got %+v", g)
	}
}

func TestInvalidateDropsMemoryOnly(t *testing.T) {
	backend := cache.NewMemoryBackend()
	ctx := context.Background()

	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", branchOutput()).
		On(fullLog, logAt1())
	svc := newService(script, backend)
	svc.GetGraph(ctx, false)

	svc.Invalidate("merge")

	// Next read falls through memory but hits the durable snapshot.
	g := svc.GetGraph(ctx, false)
	if g.HeadOf() != "aaaa" {
		t.Fatalf("head = %q", g.HeadOf())
	}
	if script.CallCount("log --all") != 1 {
		t.Errorf("invalidate must not force a rebuild, log runs = %d", script.CallCount("log --all"))
	}
}
