package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

func newSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	dir := t.TempDir()
	// TempDir may itself sit behind a symlink (e.g. /tmp on darwin).
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := NewSandbox(resolved)
	if err != nil {
		t.Fatal(err)
	}
	return sb, resolved
}

func TestNewSandboxNonExistentPath(t *testing.T) {
	_, err := NewSandbox("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent path")
	}
}

func TestNewSandboxNotDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir.txt")
	if err := os.WriteFile(file, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewSandbox(file)
	if err == nil {
		t.Error("expected error for regular file")
	}
}

func TestResolveVirtualPaths(t *testing.T) {
	sb, root := newSandbox(t)

	tests := []struct {
		virtual string
		want    string
	}{
		{"", root},
		{".", root},
		{"/", root},
		{"/data/x.csv", filepath.Join(root, "data", "x.csv")},
		{"data/x.csv", filepath.Join(root, "data", "x.csv")},
	}
	for _, tt := range tests {
		got, err := sb.Resolve(tt.virtual)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.virtual, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.virtual, got, tt.want)
		}
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	sb, _ := newSandbox(t)

	for _, virtual := range []string{"/../etc/passwd", "/../../root", "/a/../../../etc"} {
		_, err := sb.Resolve(virtual)
		if !errors.Is(err, domain.ErrPathOutsideSandbox) {
			t.Errorf("Resolve(%q): expected ErrPathOutsideSandbox, got %v", virtual, err)
		}
	}
}

func TestValidatePathRejectsOutside(t *testing.T) {
	sb, _ := newSandbox(t)

	_, err := sb.ValidatePath("/etc/passwd")
	if !errors.Is(err, domain.ErrPathOutsideSandbox) {
		t.Errorf("expected ErrPathOutsideSandbox, got %v", err)
	}
}

func TestValidatePathSymlinkEscape(t *testing.T) {
	sb, root := newSandbox(t)
	outside := t.TempDir()

	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skip("cannot create symlinks")
	}

	_, err := sb.ValidatePath(filepath.Join(link, "file.txt"))
	if !errors.Is(err, domain.ErrPathOutsideSandbox) {
		t.Errorf("symlink escape: expected ErrPathOutsideSandbox, got %v", err)
	}
}

func TestValidatePathNonExistent(t *testing.T) {
	sb, root := newSandbox(t)

	// Paths that do not exist yet validate against their parent directory.
	resolved, err := sb.ValidatePath(filepath.Join(root, "new-file.txt"))
	if err != nil {
		t.Fatalf("new file inside root should validate: %v", err)
	}
	if resolved != filepath.Join(root, "new-file.txt") {
		t.Errorf("resolved = %q", resolved)
	}
}

func TestValidatePathDeepNonExistent(t *testing.T) {
	sb, root := newSandbox(t)

	want := filepath.Join(root, "data", "reports", "q3.csv")
	resolved, err := sb.ValidatePath(want)
	if err != nil {
		t.Fatalf("deep new path inside root should validate: %v", err)
	}
	if resolved != want {
		t.Errorf("resolved = %q, want %q", resolved, want)
	}

	_, err = sb.ValidatePath(filepath.Join(root, "..", "nope", "deep", "file"))
	if !errors.Is(err, domain.ErrPathOutsideSandbox) {
		t.Errorf("expected ErrPathOutsideSandbox, got %v", err)
	}
}

func TestSandboxRootItself(t *testing.T) {
	sb, root := newSandbox(t)

	resolved, err := sb.ValidatePath(root)
	if err != nil {
		t.Errorf("root path should be valid: %v", err)
	}
	if resolved != root {
		t.Errorf("resolved = %q, want %q", resolved, root)
	}
}

func FuzzResolveConfinement(f *testing.F) {
	dir := f.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		f.Fatal(err)
	}
	sb, err := NewSandbox(resolved)
	if err != nil {
		f.Fatal(err)
	}

	f.Add("/data/x.csv")
	f.Add("/../etc/passwd")
	f.Add("../../..")
	f.Add("/a/b/../../../../etc")
	f.Add("//etc//passwd")
	f.Add("/.\x00/etc")

	f.Fuzz(func(t *testing.T, virtual string) {
		got, err := sb.Resolve(virtual)
		if err != nil {
			return
		}
		// Invariant: every accepted path stays inside the root.
		if got != sb.Root() && !filepath.IsAbs(got) {
			t.Errorf("accepted relative path %q", got)
		}
		if got != sb.Root() && !within(sb.Root(), got) {
			t.Errorf("accepted path %q outside root %q (input %q)", got, sb.Root(), virtual)
		}
	})
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
