// Package gitexec runs git commands and exposes the handful of read-only
// queries the graph pipeline needs.
//
// The package deliberately treats git as an external collaborator: the
// Runner interface is "run a git command, get stdout", and everything else
// (log parsing, graph assembly, caching) is built on top of it. This keeps
// a single source of git truth and makes the pipeline testable with a
// scripted runner.
package gitexec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/observability"
)

// DefaultTimeout bounds a single git invocation. Rebuilds have no explicit
// cancellation token, so cancellation is bounded here at the subprocess edge.
const DefaultTimeout = 30 * time.Second

// Runner executes a git command in a directory and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// CLIRunner runs git via the local git executable.
type CLIRunner struct {
	// GitPath overrides the git executable ("git" when empty).
	GitPath string

	// Timeout bounds each invocation (DefaultTimeout when zero).
	Timeout time.Duration
}

// NewCLIRunner creates a runner with default settings.
func NewCLIRunner() *CLIRunner {
	return &CLIRunner{}
}

// Run executes git with the given args in dir and returns stdout.
// Non-zero exits are reported as ErrCodeGitCommand, deadline hits as
// ErrCodeGitTimeout. Stderr is folded into the error message.
func (r *CLIRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	gitPath := r.GitPath
	if gitPath == "" {
		gitPath = "git"
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	observability.Git().OnCommand(ctx, dir, args)

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	observability.Git().OnCommandComplete(ctx, dir, args, time.Since(start), err)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(errors.ErrCodeGitTimeout, err, "git %s timed out after %s", argsSummary(args), timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrap(errors.ErrCodeGitCommand, err, "git %s: %s", argsSummary(args), msg)
	}

	return stdout.String(), nil
}

// argsSummary returns the git subcommand for error messages, without the
// full argument list (which can contain hundreds of hashes).
func argsSummary(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// Ensure CLIRunner implements Runner.
var _ Runner = (*CLIRunner)(nil)
