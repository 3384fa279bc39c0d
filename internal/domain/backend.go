package domain

import "context"

// FileInfo describes a single directory entry returned by Backend.List.
type FileInfo struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// ExecuteResponse is the outcome of running a command through an Executor.
//
// Exit code semantics are part of the wire contract: 124 means the command
// hit its wall-clock timeout, 1 is reserved for harness-level failures
// (the process could not be started, the container is unreachable), and any
// other value mirrors the child process's real exit status.
type ExecuteResponse struct {
	// Output is the combined stdout and stderr: stdout first, then a
	// newline and stderr when both are non-empty.
	Output string `json:"output"`
	// ExitCode is the process exit code (124 = timeout, 1 = harness failure).
	ExitCode int `json:"exit_code"`
	// Truncated reports whether Output was shortened to fit the backend's
	// configured maximum.
	Truncated bool `json:"truncated"`
}

// Backend is the capability contract every execution environment implements.
// All paths are virtual: they start with "/" and resolve against the
// backend's own root. A path that escapes the root is a contract violation
// and fails with ErrPathOutsideSandbox.
type Backend interface {
	// ID returns a stable, human-readable identifier derived from the
	// backend kind and its root (e.g. "local-exec-workspace"). Used for
	// logging and debugging, not behavioral equality.
	ID() string
	// List returns the entries of the directory at path.
	List(path string) ([]FileInfo, error)
	// Read returns the full content of the file at path.
	Read(path string) (string, error)
	// Write creates or overwrites the file at path with content.
	Write(path, content string) error
	// Edit replaces the first occurrence of find with replace in the file
	// at path. It fails with ErrEditNotFound when find does not occur.
	Edit(path, find, replace string) error
}

// Executor is the optional execution capability of a Backend. Backends that
// do not implement it cause ErrExecuteUnsupported at the dispatch layer
// rather than silently no-opping.
//
// Execute never reports command failure through the error return: timeouts
// and harness failures are folded into the ExecuteResponse per the exit-code
// convention so the caller can treat them like any completed command. The
// error return is reserved for contract-level violations.
type Executor interface {
	Execute(ctx context.Context, command string) (ExecuteResponse, error)
}

// ExecutionKind tags a backend's execution environment for introspection.
type ExecutionKind string

const (
	ExecutionLocal     ExecutionKind = "local"
	ExecutionContainer ExecutionKind = "container"
	ExecutionNone      ExecutionKind = "none"
)
