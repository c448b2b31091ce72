package gitexec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/errors"
)

// logFormat is the record layout consumed by commitgraph.ParseLog: four
// NUL-separated fields per line (hash, parent hashes, decorated refs,
// committer timestamp in seconds).
const logFormat = "%H%x00%P%x00%D%x00%ct"

// BranchSummary describes the local branches of a repository.
type BranchSummary struct {
	// Current is the checked-out branch name, empty on a detached HEAD.
	Current string `json:"current"`

	// All lists every local branch name.
	All []string `json:"all"`
}

// Repository wraps a Runner with the read-only git queries the pipeline
// needs. It performs no git mutation.
type Repository struct {
	root   string
	runner Runner
}

// Open validates that root is a git worktree and returns a Repository.
func Open(root string, runner Runner) (*Repository, error) {
	if err := errors.ValidateRepoPath(root); err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	if _, err := os.Stat(filepath.Join(absRoot, ".git")); err != nil {
		return nil, errors.New(errors.ErrCodeNotARepository, "not a git repository: %s", absRoot)
	}
	if runner == nil {
		runner = NewCLIRunner()
	}
	return &Repository{root: absRoot, runner: runner}, nil
}

// NewRepository wires a Repository without checking the filesystem.
// Used by tests with a scripted runner.
func NewRepository(root string, runner Runner) *Repository {
	return &Repository{root: root, runner: runner}
}

// Root returns the absolute worktree root.
func (r *Repository) Root() string { return r.root }

// ID returns the repository identity used in cache keys: the
// percent-encoded worktree root, or a fixed sentinel when unknown.
func (r *Repository) ID() string { return cache.RepoID(r.root) }

// Head returns the current HEAD commit hash via rev-parse.
func (r *Repository) Head(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, r.root, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	head := strings.TrimSpace(out)
	if err := errors.ValidateHash(head); err != nil {
		return "", err
	}
	return head, nil
}

// Branches returns the current branch and the full local branch list,
// parsed from porcelain `git branch` output. A detached HEAD line is
// skipped and leaves Current empty.
func (r *Repository) Branches(ctx context.Context) (BranchSummary, error) {
	out, err := r.runner.Run(ctx, r.root, "branch")
	if err != nil {
		return BranchSummary{}, err
	}

	var summary BranchSummary
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		current := strings.HasPrefix(line, "* ")
		name := strings.TrimSpace(strings.TrimPrefix(line, "* "))
		if strings.HasPrefix(name, "(") {
			// "(HEAD detached at ...)"
			continue
		}
		summary.All = append(summary.All, name)
		if current {
			summary.Current = name
		}
	}
	return summary, nil
}

// LogAll returns raw log records for the full history, newest first,
// capped at maxCount commits across all refs.
func (r *Repository) LogAll(ctx context.Context, maxCount int) (string, error) {
	return r.runner.Run(ctx, r.root,
		"log", "--all",
		fmt.Sprintf("--max-count=%d", maxCount),
		"--topo-order", "--date-order",
		"--format="+logFormat,
		"--decorate=full")
}

// LogRange returns raw log records for base..head: commits reachable from
// head but not from base (exclusive of base, inclusive of head).
func (r *Repository) LogRange(ctx context.Context, base, head string) (string, error) {
	if err := errors.ValidateHash(base); err != nil {
		return "", err
	}
	if err := errors.ValidateHash(head); err != nil {
		return "", err
	}
	return r.runner.Run(ctx, r.root,
		"log", base+".."+head,
		"--topo-order", "--date-order",
		"--format="+logFormat,
		"--decorate=full")
}

// IsAncestor reports whether ancestor is a strict or equal ancestor of
// descendant. Any failure (non-zero exit, bad hash, subprocess error) is
// treated as "not an ancestor" so callers can fall back to a full rebuild.
func (r *Repository) IsAncestor(ctx context.Context, ancestor, descendant string) bool {
	if errors.ValidateHash(ancestor) != nil || errors.ValidateHash(descendant) != nil {
		return false
	}
	_, err := r.runner.Run(ctx, r.root, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil
}
