package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/gitexec"
	"github.com/matzehuels/gitlanes/pkg/lanes"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/snapshot"
)

const logArgs = "--topo-order --date-order --format=%H%x00%P%x00%D%x00%ct --decorate=full"

func writeEvent(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}

func testServer() (*Server, *gitexec.Script) {
	script := gitexec.NewScript().
		On("rev-parse HEAD", "aaaa\n").
		On("branch", "* main\n").
		On("log --all --max-count=800 "+logArgs, "aaaa\x00\x00HEAD -> refs/heads/main\x001000\n")
	repo := gitexec.NewRepository("/work/repo", script)
	svc := pipeline.New(repo, pipeline.Options{Snapshots: snapshot.New(cache.NewMemoryBackend())})
	return New(svc, Options{}), script
}

func TestHandleGraph(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}

	var g commitgraph.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if g.NodeCount() != 1 || g.HeadOf() != "aaaa" {
		t.Errorf("graph = %d nodes head %q", g.NodeCount(), g.HeadOf())
	}
}

func TestHandleGraphForceRefresh(t *testing.T) {
	srv, script := testServer()

	router := srv.router()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/graph", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/graph?refresh=true", nil))

	if script.CallCount("log --all") != 2 {
		t.Errorf("refresh=true should rebuild, log runs = %d", script.CallCount("log --all"))
	}
}

func TestHandleLayout(t *testing.T) {
	srv, _ := testServer()

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var l lanes.Layout
	if err := json.Unmarshal(rec.Body.Bytes(), &l); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(l.Placements) != 1 {
		t.Errorf("placements = %d, want 1", len(l.Placements))
	}
}

func TestHandleSnapshotCold(t *testing.T) {
	script := gitexec.NewScript()
	repo := gitexec.NewRepository("/work/repo", script)
	svc := pipeline.New(repo, pipeline.Options{Snapshots: snapshot.New(cache.NewMemoryBackend())})
	srv := New(svc, Options{})

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if script.CallCount("log") != 0 {
		t.Error("snapshot endpoint must never rebuild")
	}
}

func TestHandleSnapshotWarm(t *testing.T) {
	srv, _ := testServer()
	router := srv.router()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/graph", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after a build", rec.Code)
	}
}

func TestHandleClearCache(t *testing.T) {
	srv, _ := testServer()
	router := srv.router()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/graph", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("snapshot after clear = %d, want 404", rec.Code)
	}
}

func TestIgnoreEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		ignore bool
	}{
		{"lock file", "/repo/.git/index.lock", true},
		{"reflog", "/repo/.git/logs/HEAD", true},
		{"config", "/repo/.git/config", true},
		{"fetch head", "/repo/.git/FETCH_HEAD", true},
		{"ref update", "/repo/.git/refs/heads/main", false},
		{"head", "/repo/.git/HEAD", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := writeEvent(tt.event)
			if got := ignoreEvent(event); got != tt.ignore {
				t.Errorf("ignoreEvent(%s) = %v, want %v", tt.event, got, tt.ignore)
			}
		})
	}
}
