package backend

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Local runs shell commands as child processes on the host, confined to the
// backend's root directory, under a wall-clock timeout, an output-size bound,
// and an environment allowlist. File operations come from the embedded
// Filesystem backend.
type Local struct {
	*Filesystem

	timeout      time.Duration
	maxOutput    int
	envAllowlist []string
	environ      func() []string // host environment source, swappable in tests
	logger       *slog.Logger
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithTimeout sets the wall-clock limit for each Execute call.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *Local) { l.timeout = d }
}

// WithMaxOutputChars bounds the combined stdout+stderr size; longer output
// is truncated head-and-tail.
func WithMaxOutputChars(n int) LocalOption {
	return func(l *Local) { l.maxOutput = n }
}

// WithEnvAllowlist sets the environment variable names allowed to cross into
// spawned processes. PATH is always passed through when the host has it.
func WithEnvAllowlist(names []string) LocalOption {
	return func(l *Local) { l.envAllowlist = names }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LocalOption {
	return func(l *Local) { l.logger = logger }
}

// NewLocal creates a local process backend rooted at root.
func NewLocal(root string, opts ...LocalOption) (*Local, error) {
	fs, err := NewFilesystem(root)
	if err != nil {
		return nil, err
	}
	l := &Local{
		Filesystem: fs,
		timeout:    DefaultTimeout,
		maxOutput:  DefaultMaxOutputChars,
		environ:    os.Environ,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	fs.logger = l.logger
	return l, nil
}

func (l *Local) ID() string {
	return "local-exec-" + filepath.Base(l.Root())
}

// Kind reports the execution environment of this backend.
func (l *Local) Kind() domain.ExecutionKind { return domain.ExecutionLocal }

// Execute runs command through the shell with the backend root as working
// directory. The subprocess environment is rebuilt from the allowlist on
// every call. Timeouts and launch failures are reported inside the response
// per the exit-code convention; the error return is always nil here.
func (l *Local) Execute(ctx context.Context, command string) (domain.ExecuteResponse, error) {
	start := time.Now()
	resp := runCommand(ctx, runSpec{
		argv:      []string{"/bin/sh", "-c", command},
		dir:       l.Root(),
		env:       BuildEnv(l.environ(), l.envAllowlist),
		timeout:   l.timeout,
		maxOutput: l.maxOutput,
	})

	l.logger.Debug("local execute",
		"backend", l.ID(),
		"exit_code", resp.ExitCode,
		"truncated", resp.Truncated,
		"duration", time.Since(start))
	return resp, nil
}
