package gitexec

import (
	"context"
	"strings"
	"sync"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

// Script is a scripted Runner for tests. Responses are keyed by the
// space-joined argument list; unscripted commands fail with ErrCodeGitCommand.
//
// Example:
//
//	script := gitexec.NewScript()
//	script.On("rev-parse HEAD", "abc123\n")
//	script.OnErr("merge-base --is-ancestor x y", errors.New(errors.ErrCodeGitCommand, "exit 1"))
type Script struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     [][]string
}

// NewScript creates an empty scripted runner.
func NewScript() *Script {
	return &Script{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

// On scripts stdout for the given space-joined argument list.
func (s *Script) On(args, stdout string) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[args] = stdout
	return s
}

// OnErr scripts a failure for the given space-joined argument list.
func (s *Script) OnErr(args string, err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[args] = err
	return s
}

// Run returns the scripted response for the command.
func (s *Script) Run(ctx context.Context, dir string, args ...string) (string, error) {
	key := strings.Join(args, " ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, args)

	if err, ok := s.errs[key]; ok {
		return "", err
	}
	if out, ok := s.responses[key]; ok {
		return out, nil
	}
	return "", errors.New(errors.ErrCodeGitCommand, "unscripted git command: %s", key)
}

// Calls returns every argument list Run has seen, in order.
func (s *Script) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times a command matching the space-joined
// argument prefix was run.
func (s *Script) CallCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, call := range s.calls {
		if strings.HasPrefix(strings.Join(call, " "), prefix) {
			n++
		}
	}
	return n
}

// Ensure Script implements Runner.
var _ Runner = (*Script)(nil)
