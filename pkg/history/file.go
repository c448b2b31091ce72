package history

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// FileStore keeps one JSON file of events per repository.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-based event store.
// If baseDir is empty, defaults to ~/.config/gitlanes/history/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "gitlanes", "history")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create history dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// feedPath maps a repository ID to its event file. Repository IDs are
// percent-encoded so a second escaping pass keeps them filename-safe.
func (s *FileStore) feedPath(repoID string) string {
	return filepath.Join(s.baseDir, url.PathEscape(repoID)+".json")
}

func (s *FileStore) Record(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read(event.RepoID)
	if err != nil {
		return err
	}
	events = append(events, event)

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal events")
	}
	if err := os.WriteFile(s.feedPath(event.RepoID), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write event file")
	}
	return nil
}

func (s *FileStore) Events(ctx context.Context, repoID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(repoID)
}

func (s *FileStore) read(repoID string) ([]Event, error) {
	data, err := os.ReadFile(s.feedPath(repoID))
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read event file")
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse event file")
	}
	return events, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for event files.
func (s *FileStore) Path() string {
	return s.baseDir
}
