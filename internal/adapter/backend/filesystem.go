// Package backend implements the execution environments behind the agent's
// uniform file/execute surface: a plain filesystem backend, a local process
// backend, a container process backend, and a composite router that spans
// several of them under one virtual path space.
package backend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/security"
)

// Filesystem is a file-operations-only backend rooted at a single directory.
// It deliberately does not implement domain.Executor; routing a command to
// it yields domain.ErrExecuteUnsupported. Local and Docker embed it for
// their file operations.
type Filesystem struct {
	sandbox  *security.Sandbox
	readOnly bool
	logger   *slog.Logger
}

// FilesystemOption configures optional Filesystem features.
type FilesystemOption func(*Filesystem)

// WithReadOnly rejects Write and Edit with domain.ErrReadOnlyBackend.
// Used for reference trees such as a skills library.
func WithReadOnly() FilesystemOption {
	return func(f *Filesystem) { f.readOnly = true }
}

// WithFilesystemLogger sets the logger. Defaults to slog.Default().
func WithFilesystemLogger(logger *slog.Logger) FilesystemOption {
	return func(f *Filesystem) { f.logger = logger }
}

// NewFilesystem creates a filesystem backend rooted at root. The root must
// exist; construction fails fast on configuration errors.
func NewFilesystem(root string, opts ...FilesystemOption) (*Filesystem, error) {
	sb, err := security.NewSandbox(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem backend: %w", err)
	}
	f := &Filesystem{sandbox: sb, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Filesystem) ID() string {
	return "fs-" + filepath.Base(f.sandbox.Root())
}

// Root returns the physical root directory of the backend.
func (f *Filesystem) Root() string { return f.sandbox.Root() }

// List returns the entries of the directory at the given virtual path.
func (f *Filesystem) List(path string) ([]domain.FileInfo, error) {
	resolved, err := f.sandbox.Resolve(path)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewDomainError("Backend.List", domain.ErrNotFound, path)
		}
		return nil, domain.WrapOp("Backend.List", err)
	}
	if !st.IsDir() {
		return nil, domain.NewDomainError("Backend.List", domain.ErrNotDirectory, path)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, domain.WrapOp("Backend.List", err)
	}

	infos := make([]domain.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info := domain.FileInfo{Name: entry.Name(), IsDir: entry.IsDir()}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
		}
		infos = append(infos, info)
	}

	f.logger.Debug("backend list", "backend", f.ID(), "path", path, "entries", len(infos))
	return infos, nil
}

// Read returns the full content of the file at the given virtual path.
func (f *Filesystem) Read(path string) (string, error) {
	resolved, err := f.sandbox.Resolve(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.NewDomainError("Backend.Read", domain.ErrNotFound, path)
		}
		return "", domain.WrapOp("Backend.Read", err)
	}

	f.logger.Debug("backend read", "backend", f.ID(), "path", path, "size", len(data))
	return string(data), nil
}

// Write creates or overwrites the file at the given virtual path. Missing
// parent directories are created.
func (f *Filesystem) Write(path, content string) error {
	if f.readOnly {
		return domain.NewDomainError("Backend.Write", domain.ErrReadOnlyBackend, path)
	}

	resolved, err := f.sandbox.Resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return domain.WrapOp("Backend.Write", err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return domain.WrapOp("Backend.Write", err)
	}

	f.logger.Debug("backend write", "backend", f.ID(), "path", path, "size", len(content))
	return nil
}

// Edit replaces the first occurrence of find in the file at the given
// virtual path. The file must exist and find must occur in it.
func (f *Filesystem) Edit(path, find, replace string) error {
	if f.readOnly {
		return domain.NewDomainError("Backend.Edit", domain.ErrReadOnlyBackend, path)
	}
	if find == "" {
		return domain.NewDomainError("Backend.Edit", domain.ErrInvalidInput, "empty find string")
	}

	resolved, err := f.sandbox.Resolve(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewDomainError("Backend.Edit", domain.ErrNotFound, path)
		}
		return domain.WrapOp("Backend.Edit", err)
	}

	content := string(data)
	if !strings.Contains(content, find) {
		return domain.NewDomainError("Backend.Edit", domain.ErrEditNotFound,
			fmt.Sprintf("%q in %s", find, path))
	}
	content = strings.Replace(content, find, replace, 1)

	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return domain.WrapOp("Backend.Edit", err)
	}

	f.logger.Debug("backend edit", "backend", f.ID(), "path", path)
	return nil
}
