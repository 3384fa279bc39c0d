package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Execution bounds shared by the local and container backends.
const (
	DefaultTimeout        = 120 * time.Second
	DefaultMaxOutputChars = 50_000
)

// runSpec describes one child-process invocation.
type runSpec struct {
	argv      []string // program and arguments; argv[0] is resolved via PATH
	dir       string   // working directory ("" = inherit)
	env       []string // subprocess environment (nil = empty environment)
	timeout   time.Duration
	maxOutput int
}

// runCommand spawns the child described by spec and folds every outcome into
// an ExecuteResponse: the real exit status on completion, 124 on timeout,
// 1 when the process could not be run at all. The child and any processes it
// spawned are forcibly killed when the deadline elapses; runCommand does not
// return until the process group is reaped.
func runCommand(ctx context.Context, spec runSpec) domain.ExecuteResponse {
	ctx, cancel := context.WithTimeout(ctx, spec.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.argv[0], spec.argv[1:]...)
	cmd.Dir = spec.dir
	cmd.Env = spec.env
	if cmd.Env == nil {
		cmd.Env = []string{}
	}
	setupProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ExecuteResponse{
			Output:   fmt.Sprintf("Command timed out after %ds", int(spec.timeout.Seconds())),
			ExitCode: 124,
		}
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Harness failure: the process never ran.
			return domain.ExecuteResponse{
				Output:   fmt.Sprintf("Error executing command: %v", err),
				ExitCode: 1,
			}
		}
	}

	output, truncated := truncateOutput(
		combineOutput(stdout.String(), stderr.String()), spec.maxOutput)

	return domain.ExecuteResponse{
		Output:    output,
		ExitCode:  exitCode,
		Truncated: truncated,
	}
}
