package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/tracer"
)

// Execute is the standard tool execution pipeline: parse params -> start trace -> run handler -> format result.
//
// The handler receives the parsed params and an active trace span. It should return:
//   - (any Go value, nil) — the value is JSON-marshaled into a success ToolResult
//   - (string, nil) — wrapped in a plain-text ToolResult
//   - (*domain.ToolResult, nil) — returned as-is (for custom formatting)
//   - (nil, error) — turned into an error ToolResult with logging
func Execute[P any](
	ctx context.Context,
	spanName string,
	logger *slog.Logger,
	rawParams json.RawMessage,
	handler func(ctx context.Context, span trace.Span, params P) (any, error),
) (*domain.ToolResult, error) {
	callID := newCallID()
	ctx, span := tracer.StartSpan(ctx, spanName,
		trace.WithAttributes(
			tracer.StringAttr("tool.name", spanName),
			tracer.StringAttr("tool.call_id", callID),
		),
	)
	defer span.End()

	var p P
	if err := json.Unmarshal(rawParams, &p); err != nil {
		tracer.RecordError(span, err)
		return &domain.ToolResult{IsError: true, Content: fmt.Sprintf("invalid params: %v", err)}, nil
	}

	result, err := handler(ctx, span, p)
	if err != nil {
		tracer.RecordError(span, err)
		logger.Warn(spanName+" failed", "call_id", callID, "error", err, "code", domain.ErrorCodeOf(err))
		return &domain.ToolResult{IsError: true, Content: err.Error()}, nil
	}

	return formatResult(span, result)
}

// formatResult converts the handler's return value into a ToolResult.
func formatResult(span trace.Span, result any) (*domain.ToolResult, error) {
	switch v := result.(type) {
	case *domain.ToolResult:
		if v.IsError {
			tracer.RecordError(span, fmt.Errorf("%s", v.Content))
		} else {
			tracer.SetOK(span)
		}
		return v, nil
	case string:
		tracer.SetOK(span)
		return &domain.ToolResult{Content: v}, nil
	default:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			tracer.RecordError(span, err)
			return &domain.ToolResult{
				IsError: true,
				Content: fmt.Sprintf("failed to format response: %v", err),
			}, nil
		}
		tracer.SetOK(span)
		return &domain.ToolResult{Content: string(data)}, nil
	}
}

// newCallID returns a ULID correlating one tool call across logs and spans.
func newCallID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// TextResult wraps plain text in a ToolResult.
func TextResult(s string) *domain.ToolResult {
	return &domain.ToolResult{Content: s}
}
