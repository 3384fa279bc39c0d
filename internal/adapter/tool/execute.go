package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/tracer"
)

// ExecuteTool runs shell commands through an execution backend.
// Timeouts and command failures are reported in the result body with
// their exit codes, never as tool errors.
type ExecuteTool struct {
	executor domain.Executor
	logger   *slog.Logger
}

// NewExecuteTool creates an execute tool over the given executor.
func NewExecuteTool(executor domain.Executor, logger *slog.Logger) *ExecuteTool {
	return &ExecuteTool{executor: executor, logger: logger}
}

func (t *ExecuteTool) Name() string { return "execute" }
func (t *ExecuteTool) Description() string {
	return "Execute a shell command in the workspace and return its output"
}

func (t *ExecuteTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"command": {"type": "string", "description": "The shell command to execute"}
			},
			"required": ["command"]
		}`),
	}
}

type executeParams struct {
	Command string `json:"command"`
}

func (t *ExecuteTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.execute", t.logger, params,
		func(ctx context.Context, span trace.Span, p executeParams) (any, error) {
			if p.Command == "" {
				return nil, domain.NewDomainError("tool.execute", domain.ErrInvalidInput, "command must not be empty")
			}

			resp, err := t.executor.Execute(ctx, p.Command)
			if err != nil {
				return nil, err
			}

			span.SetAttributes(
				tracer.IntAttr("exec.exit_code", resp.ExitCode),
				tracer.StringAttr("exec.truncated", strconv.FormatBool(resp.Truncated)),
			)
			t.logger.Debug("command executed",
				"exit_code", resp.ExitCode,
				"output_len", len(resp.Output),
				"truncated", resp.Truncated,
			)

			result := TextResult(resp.Output)
			if resp.ExitCode != 0 {
				result.IsError = true
				if result.Content == "" {
					result.Content = "command exited with code " + strconv.Itoa(resp.ExitCode)
				}
			}
			return result, nil
		},
	)
}
