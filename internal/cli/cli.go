// Package cli implements the gitlanes command-line interface.
//
// Commands build the commit graph of a repository, lay it out into lanes,
// render it, serve it to editor panels, and manage the cache tiers. The
// CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/buildinfo"
	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/config"
	"github.com/matzehuels/gitlanes/pkg/gitexec"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitlanes"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// configPath overrides the default config location (--config flag).
	configPath string

	// repoPath is the repository to operate on (--repo flag, default cwd).
	repoPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Gitlanes draws git history as colored branch lanes",
		Long:         `Gitlanes builds a cached commit graph from a git repository, assigns each commit a lane and a recyclable branch color, and serves or renders the result for editor graph panels.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().StringVar(&c.repoPath, "repo", "", "repository path (default: current directory)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Factory
// =============================================================================

// newService opens the target repository and wires the pipeline with the
// configured cache and history backends.
func (c *CLI) newService(ctx context.Context, noCache bool) (*pipeline.Service, error) {
	root := c.repoPath
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}

	repo, err := gitexec.Open(root, nil)
	if err != nil {
		return nil, err
	}

	backend, err := c.newSnapshotBackend(ctx, noCache)
	if err != nil {
		c.Logger.Warn("durable cache unavailable", "err", err)
		backend = cache.NewNullCache()
	}
	events, err := c.newHistoryStore(ctx)
	if err != nil {
		c.Logger.Warn("merge history unavailable", "err", err)
		events = nil
	}

	return pipeline.New(repo, pipeline.Options{
		CommitLimit: c.Config.CommitLimit,
		MemoryTTL:   c.Config.MemoryTTL.Std(),
		Memory:      cache.NewMemory(c.Config.MemoryCapacity),
		Snapshots:   snapshot.New(backend),
		Events:      events,
		Logger:      c.Logger,
	}), nil
}

func (c *CLI) newSnapshotBackend(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Snapshot.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Snapshot.RedisAddr,
			Password: c.Config.Snapshot.RedisPassword,
			DB:       c.Config.Snapshot.RedisDB,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(c.snapshotDir())
	}
}

func (c *CLI) newHistoryStore(ctx context.Context) (history.Store, error) {
	switch c.Config.History.Backend {
	case "mongo":
		return history.NewMongoStore(ctx, history.MongoConfig{URI: c.Config.History.MongoURI})
	case "none":
		return nil, nil
	default:
		return history.NewFileStore(c.historyDir())
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/gitlanes/), preferring the configured override.
func (c *CLI) cacheDir() string {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".cache", appName)
}

func (c *CLI) snapshotDir() string {
	return filepath.Join(c.cacheDir(), "snapshots")
}

func (c *CLI) historyDir() string {
	return filepath.Join(c.cacheDir(), "history")
}
