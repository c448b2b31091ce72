package server

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceTime coalesces bursts of .git writes (a single git command
// touches many files) into one rebuild.
const debounceTime = 100 * time.Millisecond

// watch drives change detection: filesystem notifications on the .git
// directory when available, plus a polling fallback comparing HEAD.
func (s *Server) watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, polling only", "err", err)
	} else {
		gitDir := filepath.Join(s.svc.Repo().Root(), ".git")
		if err := watcher.Add(gitDir); err != nil {
			s.logger.Warn("cannot watch .git, polling only", "err", err)
			watcher.Close()
			watcher = nil
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	var poll <-chan time.Time
	var lastHead string
	if s.opts.PollInterval > 0 {
		ticker := time.NewTicker(s.opts.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
		lastHead, _ = s.svc.Repo().Head(ctx)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	events := make(<-chan fsnotify.Event)
	errs := make(<-chan error)
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if ignoreEvent(event) {
				continue
			}
			s.logger.Debug("change detected", "file", filepath.Base(event.Name))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceTime, func() {
				s.refresh(ctx, "fs-change")
			})

		case err, ok := <-errs:
			if !ok {
				return
			}
			s.logger.Debug("watcher error", "err", err)

		case <-poll:
			head, err := s.svc.Repo().Head(ctx)
			if err != nil || head == lastHead {
				continue
			}
			lastHead = head
			s.refresh(ctx, "poll")
		}
	}
}

// ignoreEvent filters .git noise that does not affect the graph.
func ignoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return true
	}
	if strings.HasSuffix(base, ".lock") {
		return true
	}
	if strings.Contains(event.Name, string(filepath.Separator)+"logs"+string(filepath.Separator)) {
		return true
	}
	if base == "config" || base == "FETCH_HEAD" {
		return true
	}
	return false
}
