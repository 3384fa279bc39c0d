package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Sandbox confines file operations to a single root directory. Backends
// resolve every virtual path through it before touching the filesystem.
type Sandbox struct {
	root string // absolute, symlink-resolved root
}

// NewSandbox creates a sandbox rooted at the given directory. The root must
// exist and be a directory; anything else is a configuration error.
func NewSandbox(root string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("eval symlinks for sandbox root: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat sandbox root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %q is not a directory", resolved)
	}

	return &Sandbox{root: resolved}, nil
}

// Resolve maps a virtual path (always "/"-rooted from the caller's view) to
// a physical path inside the sandbox and validates confinement. "" and "."
// resolve to the root itself.
func (s *Sandbox) Resolve(virtual string) (string, error) {
	if virtual == "" || virtual == "." || virtual == "/" {
		return s.root, nil
	}
	return s.ValidatePath(filepath.Join(s.root, strings.TrimPrefix(virtual, "/")))
}

// ValidatePath checks that a requested physical path resolves to within the
// sandbox. Symlinks are resolved AFTER computing the absolute path so a link
// pointing outside the root cannot escape.
func (s *Sandbox) ValidatePath(requested string) (string, error) {
	abs, err := filepath.Abs(requested)
	if err != nil {
		return "", domain.NewDomainError("Sandbox.ValidatePath", domain.ErrPathOutsideSandbox, err.Error())
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path doesn't exist yet - resolve the deepest existing ancestor
		// and rejoin the not-yet-created remainder onto it.
		prefix := abs
		var remainder []string
		for {
			parent := filepath.Dir(prefix)
			if parent == prefix {
				return "", domain.NewDomainError("Sandbox.ValidatePath", domain.ErrPathOutsideSandbox, err.Error())
			}
			remainder = append([]string{filepath.Base(prefix)}, remainder...)
			prefix = parent
			if resolvedPrefix, err2 := filepath.EvalSymlinks(prefix); err2 == nil {
				resolved = filepath.Join(append([]string{resolvedPrefix}, remainder...)...)
				break
			}
		}
	}

	if !s.isWithinRoot(resolved) {
		return "", domain.NewDomainError("Sandbox.ValidatePath", domain.ErrPathOutsideSandbox,
			fmt.Sprintf("resolved %q is outside root %q", resolved, s.root))
	}

	return resolved, nil
}

// Root returns the sandbox root directory.
func (s *Sandbox) Root() string { return s.root }

func (s *Sandbox) isWithinRoot(path string) bool {
	return path == s.root || strings.HasPrefix(path, s.root+string(os.PathSeparator))
}
