package domain

import (
	"errors"
	"fmt"
)

// Category sentinels — use with NewDomainError for operation-specific errors.
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrTimeout      = fmt.Errorf("operation timed out")
	ErrInvalidInput = fmt.Errorf("invalid input")
)

// Sentinel errors for the domain layer.
var (
	ErrPathOutsideSandbox   = fmt.Errorf("path is outside sandbox boundary")
	ErrNotDirectory         = fmt.Errorf("path is not a directory")
	ErrExecuteUnsupported   = fmt.Errorf("backend does not support command execution")
	ErrContainerUnavailable = fmt.Errorf("container not running or not reachable")
	ErrReadOnlyBackend      = fmt.Errorf("backend is read-only")
	ErrEditNotFound         = fmt.Errorf("edit target string not found in file")
	ErrConfigLoad           = fmt.Errorf("failed to load configuration")
	ErrToolNotFound         = fmt.Errorf("tool not found")
	ErrRouteInvalid         = fmt.Errorf("invalid route prefix")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Backend.Read")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code.
const (
	CodeUnknown              ErrorCode = "UNKNOWN"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeTimeout              ErrorCode = "TIMEOUT"
	CodeInvalidInput         ErrorCode = "INVALID_INPUT"
	CodePathOutsideSandbox   ErrorCode = "PATH_OUTSIDE_SANDBOX"
	CodeNotDirectory         ErrorCode = "NOT_DIRECTORY"
	CodeExecuteUnsupported   ErrorCode = "EXECUTE_UNSUPPORTED"
	CodeContainerUnavailable ErrorCode = "CONTAINER_UNAVAILABLE"
	CodeReadOnlyBackend      ErrorCode = "READ_ONLY_BACKEND"
	CodeEditNotFound         ErrorCode = "EDIT_NOT_FOUND"
	CodeConfigLoad           ErrorCode = "CONFIG_LOAD"
	CodeToolNotFound         ErrorCode = "TOOL_NOT_FOUND"
	CodeRouteInvalid         ErrorCode = "ROUTE_INVALID"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:             CodeNotFound,
	ErrTimeout:              CodeTimeout,
	ErrInvalidInput:         CodeInvalidInput,
	ErrPathOutsideSandbox:   CodePathOutsideSandbox,
	ErrNotDirectory:         CodeNotDirectory,
	ErrExecuteUnsupported:   CodeExecuteUnsupported,
	ErrContainerUnavailable: CodeContainerUnavailable,
	ErrReadOnlyBackend:      CodeReadOnlyBackend,
	ErrEditNotFound:         CodeEditNotFound,
	ErrConfigLoad:           CodeConfigLoad,
	ErrToolNotFound:         CodeToolNotFound,
	ErrRouteInvalid:         CodeRouteInvalid,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	// Walk the error chain with errors.Is.
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
