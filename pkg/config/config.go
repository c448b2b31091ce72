// Package config loads gitlanes settings from a TOML file with
// environment-variable overrides. Every field has a working default, so a
// missing config file is not an error.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/errors"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full application configuration.
type Config struct {
	// CacheDir is where file-backed stores live. Defaults to
	// ~/.cache/gitlanes.
	CacheDir string `toml:"cache_dir"`

	// CommitLimit caps how many commits a graph holds.
	CommitLimit int `toml:"commit_limit"`

	// MemoryTTL is the freshness window of the in-memory graph cache.
	MemoryTTL Duration `toml:"memory_ttl"`

	// MemoryCapacity bounds the in-memory cache entry count.
	MemoryCapacity int `toml:"memory_capacity"`

	Snapshot SnapshotConfig `toml:"snapshot"`
	History  HistoryConfig  `toml:"history"`
	Server   ServerConfig   `toml:"server"`
}

// SnapshotConfig selects and tunes the durable snapshot backend.
type SnapshotConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// HistoryConfig selects the merge-event store.
type HistoryConfig struct {
	// Backend is "file", "mongo", or "none".
	Backend string `toml:"backend"`

	MongoURI string `toml:"mongo_uri"`
}

// ServerConfig tunes the HTTP server and repository watcher.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// PollInterval is the watcher's fallback polling period, used when
	// filesystem notifications are unavailable.
	PollInterval Duration `toml:"poll_interval"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		CacheDir:       filepath.Join(home, ".cache", "gitlanes"),
		CommitLimit:    commitgraph.DefaultCommitLimit,
		MemoryTTL:      Duration(cache.DefaultMemoryTTL),
		MemoryCapacity: cache.DefaultMemoryCapacity,
		Snapshot: SnapshotConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		History: HistoryConfig{
			Backend:  "file",
			MongoURI: "mongodb://localhost:27017",
		},
		Server: ServerConfig{
			Addr:         "localhost:7410",
			PollInterval: Duration(2 * time.Second),
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gitlanes", "config.toml")
	}
	return ""
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. An empty path
// means DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays GITLANES_* environment variables on the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GITLANES_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GITLANES_SNAPSHOT_BACKEND"); v != "" {
		cfg.Snapshot.Backend = v
	}
	if v := os.Getenv("GITLANES_REDIS_ADDR"); v != "" {
		cfg.Snapshot.RedisAddr = v
	}
	if v := os.Getenv("GITLANES_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("GITLANES_MONGO_URI"); v != "" {
		cfg.History.MongoURI = v
	}
	if v := os.Getenv("GITLANES_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}
