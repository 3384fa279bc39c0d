package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// FilesystemTool exposes the file operations of a backend as a single
// action-based tool. Paths are virtual paths interpreted by the backend,
// so routed prefixes like /skills/ work transparently.
type FilesystemTool struct {
	backend domain.Backend
	logger  *slog.Logger
}

// NewFilesystemTool creates a filesystem tool over the given backend.
func NewFilesystemTool(backend domain.Backend, logger *slog.Logger) *FilesystemTool {
	return &FilesystemTool{backend: backend, logger: logger}
}

func (t *FilesystemTool) Name() string { return "filesystem" }
func (t *FilesystemTool) Description() string {
	return "Read, write, edit, and list files within the workspace"
}

func (t *FilesystemTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"action": {"type": "string", "enum": ["read", "write", "edit", "list"], "description": "The file operation to perform"},
				"path": {"type": "string", "description": "File or directory path"},
				"content": {"type": "string", "description": "Content to write (only for write action)"},
				"find": {"type": "string", "description": "Exact text to replace (only for edit action)"},
				"replace": {"type": "string", "description": "Replacement text (only for edit action)"}
			},
			"required": ["action"]
		}`),
	}
}

type filesystemParams struct {
	Action  string `json:"action"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Find    string `json:"find,omitempty"`
	Replace string `json:"replace,omitempty"`
}

func (t *FilesystemTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.filesystem", t.logger, params,
		Dispatch(func(p filesystemParams) string { return p.Action }, ActionMap[filesystemParams]{
			"read":  t.readFile,
			"write": t.writeFile,
			"edit":  t.editFile,
			"list":  t.listDir,
		}),
	)
}

func (t *FilesystemTool) readFile(_ context.Context, p filesystemParams) (any, error) {
	data, err := t.backend.Read(p.Path)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("filesystem read", "path", p.Path, "size", len(data))
	return TextResult(data), nil
}

func (t *FilesystemTool) writeFile(_ context.Context, p filesystemParams) (any, error) {
	if err := t.backend.Write(p.Path, p.Content); err != nil {
		return nil, err
	}

	t.logger.Debug("filesystem write", "path", p.Path, "size", len(p.Content))
	return TextResult(fmt.Sprintf("wrote %d bytes to %s", len(p.Content), p.Path)), nil
}

func (t *FilesystemTool) editFile(_ context.Context, p filesystemParams) (any, error) {
	if err := t.backend.Edit(p.Path, p.Find, p.Replace); err != nil {
		return nil, err
	}

	t.logger.Debug("filesystem edit", "path", p.Path)
	return TextResult(fmt.Sprintf("edited %s", p.Path)), nil
}

func (t *FilesystemTool) listDir(_ context.Context, p filesystemParams) (any, error) {
	entries, err := t.backend.List(p.Path)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, entry := range entries {
		if entry.IsDir {
			fmt.Fprintf(&sb, "%s/\n", entry.Name)
		} else {
			fmt.Fprintf(&sb, "%s\n", entry.Name)
		}
	}

	return TextResult(sb.String()), nil
}
