package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Docker runs commands inside a pre-existing, named container via the docker
// CLI's exec mechanism, with the same timeout and output-bounding policy as
// the Local backend. File operations target the host directory that is
// bind-mounted into the container, through the embedded Filesystem backend.
//
// The backend does not start or manage the container; an unreachable
// container is a harness failure surfaced with a distinct message so the
// caller can remediate (start the container) instead of retrying blindly.
type Docker struct {
	*Filesystem

	container string
	workdir   string // working directory inside the container ("" = container default)
	passEnv   map[string]string
	timeout   time.Duration
	maxOutput int
	logger    *slog.Logger
}

// DockerOption configures a Docker backend.
type DockerOption func(*Docker)

// WithDockerTimeout sets the wall-clock limit for each Execute call.
func WithDockerTimeout(d time.Duration) DockerOption {
	return func(b *Docker) { b.timeout = d }
}

// WithDockerMaxOutputChars bounds the combined stdout+stderr size.
func WithDockerMaxOutputChars(n int) DockerOption {
	return func(b *Docker) { b.maxOutput = n }
}

// WithContainerWorkdir sets the working directory for commands inside the
// container (docker exec -w).
func WithContainerWorkdir(dir string) DockerOption {
	return func(b *Docker) { b.workdir = dir }
}

// WithContainerEnv passes the given variables into each exec. The container's
// own environment is otherwise authoritative, so unlike the local backend
// there is no host allowlist; only explicitly configured variables cross.
func WithContainerEnv(env map[string]string) DockerOption {
	return func(b *Docker) { b.passEnv = env }
}

// WithDockerLogger sets the logger. Defaults to slog.Default().
func WithDockerLogger(logger *slog.Logger) DockerOption {
	return func(b *Docker) { b.logger = logger }
}

// NewDocker creates a container process backend. root is the host directory
// bind-mounted into the container (used for file operations); container is
// the name or ID of a running container reachable through the host's docker
// engine.
func NewDocker(root, container string, opts ...DockerOption) (*Docker, error) {
	if container == "" {
		return nil, domain.NewDomainError("NewDocker", domain.ErrInvalidInput, "empty container name")
	}
	fs, err := NewFilesystem(root)
	if err != nil {
		return nil, err
	}
	b := &Docker{
		Filesystem: fs,
		container:  container,
		timeout:    DefaultTimeout,
		maxOutput:  DefaultMaxOutputChars,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	fs.logger = b.logger
	return b, nil
}

func (b *Docker) ID() string {
	return "docker-exec-" + b.container
}

// Kind reports the execution environment of this backend.
func (b *Docker) Kind() domain.ExecutionKind { return domain.ExecutionContainer }

// Execute runs command inside the container through docker exec. Timeouts,
// launch failures, and an unreachable container are all reported inside the
// response; the error return is always nil here.
func (b *Docker) Execute(ctx context.Context, command string) (domain.ExecuteResponse, error) {
	start := time.Now()
	resp := runCommand(ctx, runSpec{
		argv: b.execArgs(command),
		// The docker CLI itself needs the real host environment
		// (PATH, HOME, DOCKER_HOST); isolation happens inside the
		// container, not around the CLI.
		env:       os.Environ(),
		timeout:   b.timeout,
		maxOutput: b.maxOutput,
	})
	resp = b.classifyFailure(resp)

	b.logger.Debug("docker execute",
		"backend", b.ID(),
		"exit_code", resp.ExitCode,
		"truncated", resp.Truncated,
		"duration", time.Since(start))
	return resp, nil
}

// execArgs builds the docker exec argv for a command.
func (b *Docker) execArgs(command string) []string {
	args := []string{"docker", "exec"}
	if b.workdir != "" {
		args = append(args, "-w", b.workdir)
	}
	for _, name := range sortedKeys(b.passEnv) {
		args = append(args, "-e", name+"="+b.passEnv[name])
	}
	args = append(args, b.container, "/bin/sh", "-c", command)
	return args
}

// classifyFailure rewrites docker CLI failures that mean "the container is
// not there" into a distinct harness response, leaving genuine command exit
// codes untouched.
func (b *Docker) classifyFailure(resp domain.ExecuteResponse) domain.ExecuteResponse {
	if resp.ExitCode == 0 || !containerUnavailable(resp.Output) {
		return resp
	}
	return domain.ExecuteResponse{
		Output: fmt.Sprintf("%s: %q: %s",
			domain.ErrContainerUnavailable, b.container, strings.TrimSpace(resp.Output)),
		ExitCode: 1,
	}
}

// containerUnavailable reports whether docker CLI output indicates the
// container or the engine itself is unreachable. The daemon diagnostics are
// matched together with their error prefix so a command inside a healthy
// container that merely prints a similar phrase is not misclassified.
func containerUnavailable(output string) bool {
	if strings.Contains(output, "Cannot connect to the Docker daemon") {
		return true
	}
	if !strings.Contains(output, "Error response from daemon") &&
		!strings.Contains(output, "Error: No such container") {
		return false
	}
	for _, marker := range []string{
		"No such container",
		"is not running",
		"container has been paused",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
