package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Operation is a question asked of the version-control tool.
type Operation int

const (
	// OpGitDir reports the control-metadata directory governing a path.
	OpGitDir Operation = iota + 1
	// OpDescribe describes the current commit: full-length hash, no tags required,
	// dirty marker appended when the working tree is modified.
	OpDescribe
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// waitDelay bounds how long Run waits for output pipes to close after the
// process is killed, since children of git may keep them open.
const waitDelay = time.Second

// errUnknownOperation is returned for operations the tool does not implement.
var errUnknownOperation = errors.New("unknown vcs operation")

// String returns a short name for logs and errors.
func (op Operation) String() string {
	switch op {
	case OpGitDir:
		return "git-dir"
	case OpDescribe:
		return "describe"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Tool runs an operation with dir as working directory and returns its stdout.
// A non-nil error means the operation did not succeed.
type Tool interface {
	Run(ctx context.Context, op Operation, dir string) ([]byte, error)
}

// ToolFunc adapts a function to the Tool interface.
type ToolFunc func(ctx context.Context, op Operation, dir string) ([]byte, error)

// Run calls f.
func (f ToolFunc) Run(ctx context.Context, op Operation, dir string) ([]byte, error) {
	return f(ctx, op, dir)
}

// ExecTool runs the git command-line tool as a subprocess.
type ExecTool struct {
	// binary is the git executable name or path.
	binary string
	// timeout bounds each invocation; zero waits for the process indefinitely.
	timeout time.Duration
}

// Option configures an ExecTool.
type Option func(*ExecTool)

// WithBinary selects the git executable.
func WithBinary(binary string) Option {
	return func(t *ExecTool) {
		if binary != "" {
			t.binary = binary
		}
	}
}

// WithTimeout bounds each invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(t *ExecTool) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// NewExecTool creates a tool that shells out to git.
func NewExecTool(opts ...Option) *ExecTool {
	t := &ExecTool{
		binary: DefaultBinary,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Args returns the git arguments for op.
func Args(op Operation) ([]string, error) {
	switch op {
	case OpGitDir:
		return []string{"rev-parse", "--git-dir"}, nil
	case OpDescribe:
		// --exclude=* ignores every tag, so --always falls back to the commit
		// and --abbrev=1000 forces the full hash.
		return []string{"describe", "--always", "--exclude=*", "--long", "--abbrev=1000", "--dirty"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownOperation, op)
	}
}

// Run executes git for op inside dir.
// When git exits non-zero the error includes the first line of its stderr.
func (t *ExecTool) Run(ctx context.Context, op Operation, dir string) ([]byte, error) {
	args, err := Args(op)
	if err != nil {
		return nil, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if line := firstLine(exitErr.Stderr); line != "" {
				return nil, fmt.Errorf("git %s: %w: %s", op, err, line)
			}
		}

		return nil, fmt.Errorf("git %s: %w", op, err)
	}

	return output, nil
}

// firstLine returns the first non-empty line of b, trimmed.
func firstLine(b []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}

	return ""
}
