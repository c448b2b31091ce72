package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"graph", "layout", "render", "serve", "browse", "cache", "history", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestRootCommandFlags(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	for _, flag := range []string{"config", "repo"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestCacheDirPrefersConfig(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.Config.CacheDir = "/custom/cache"

	if got := c.cacheDir(); got != "/custom/cache" {
		t.Errorf("cacheDir() = %q, want config override", got)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	c := New(io.Discard, log.InfoLevel)
	c.Config.CacheDir = ""

	want := filepath.Join("/xdg/cache", appName)
	if got := c.cacheDir(); got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}
}

func TestSnapshotAndHistoryDirs(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.Config.CacheDir = "/base"

	if got := c.snapshotDir(); got != filepath.Join("/base", "snapshots") {
		t.Errorf("snapshotDir() = %q", got)
	}
	if got := c.historyDir(); got != filepath.Join("/base", "history") {
		t.Errorf("historyDir() = %q", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)

	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}
