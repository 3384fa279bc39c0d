package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

func newFilesystem(t *testing.T, opts ...FilesystemOption) *Filesystem {
	t.Helper()
	fs, err := NewFilesystem(t.TempDir(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestNewFilesystemBadRoot(t *testing.T) {
	if _, err := NewFilesystem("/no/such/dir"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestFilesystemID(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "workspace")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	fs, err := NewFilesystem(sub)
	if err != nil {
		t.Fatal(err)
	}
	if fs.ID() != "fs-workspace" {
		t.Errorf("ID = %q, want %q", fs.ID(), "fs-workspace")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newFilesystem(t)

	if err := fs.Write("/data/report.txt", "quarterly numbers"); err != nil {
		t.Fatal(err)
	}
	got, err := fs.Read("/data/report.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "quarterly numbers" {
		t.Errorf("Read = %q", got)
	}
}

func TestReadNotFound(t *testing.T) {
	fs := newFilesystem(t)

	_, err := fs.Read("/missing.txt")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntries(t *testing.T) {
	fs := newFilesystem(t)

	if err := fs.Write("/a.txt", "12345"); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(fs.Root(), "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	entries, err := fs.List("/")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}

	byName := map[string]domain.FileInfo{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if info := byName["a.txt"]; info.IsDir || info.Size != 5 {
		t.Errorf("a.txt info = %+v", info)
	}
	if info := byName["sub"]; !info.IsDir {
		t.Errorf("sub info = %+v", info)
	}
}

func TestListErrors(t *testing.T) {
	fs := newFilesystem(t)
	if err := fs.Write("/file.txt", "x"); err != nil {
		t.Fatal(err)
	}

	if _, err := fs.List("/missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing dir: expected ErrNotFound, got %v", err)
	}
	if _, err := fs.List("/file.txt"); !errors.Is(err, domain.ErrNotDirectory) {
		t.Errorf("file: expected ErrNotDirectory, got %v", err)
	}
}

func TestEditReplacesFirstOccurrence(t *testing.T) {
	fs := newFilesystem(t)

	if err := fs.Write("/f.txt", "one two one"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Edit("/f.txt", "one", "ONE"); err != nil {
		t.Fatal(err)
	}

	got, _ := fs.Read("/f.txt")
	if got != "ONE two one" {
		t.Errorf("content = %q", got)
	}
}

func TestEditErrors(t *testing.T) {
	fs := newFilesystem(t)
	if err := fs.Write("/f.txt", "content"); err != nil {
		t.Fatal(err)
	}

	if err := fs.Edit("/missing.txt", "a", "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing file: expected ErrNotFound, got %v", err)
	}
	if err := fs.Edit("/f.txt", "absent", "b"); !errors.Is(err, domain.ErrEditNotFound) {
		t.Errorf("absent find: expected ErrEditNotFound, got %v", err)
	}
	if err := fs.Edit("/f.txt", "", "b"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty find: expected ErrInvalidInput, got %v", err)
	}
}

func TestReadOnlyBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ref.md"), []byte("reference"), 0644); err != nil {
		t.Fatal(err)
	}
	fs, err := NewFilesystem(dir, WithReadOnly())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Read("/ref.md"); err != nil {
		t.Errorf("read should work on read-only backend: %v", err)
	}
	if err := fs.Write("/x.txt", "nope"); !errors.Is(err, domain.ErrReadOnlyBackend) {
		t.Errorf("write: expected ErrReadOnlyBackend, got %v", err)
	}
	if err := fs.Edit("/ref.md", "reference", "x"); !errors.Is(err, domain.ErrReadOnlyBackend) {
		t.Errorf("edit: expected ErrReadOnlyBackend, got %v", err)
	}
}

func TestPathConfinement(t *testing.T) {
	fs := newFilesystem(t)

	for _, path := range []string{"/../escape.txt", "/../../etc/passwd", "/a/../../b"} {
		if _, err := fs.Read(path); !errors.Is(err, domain.ErrPathOutsideSandbox) {
			t.Errorf("Read(%q): expected ErrPathOutsideSandbox, got %v", path, err)
		}
		if err := fs.Write(path, "x"); !errors.Is(err, domain.ErrPathOutsideSandbox) {
			t.Errorf("Write(%q): expected ErrPathOutsideSandbox, got %v", path, err)
		}
	}
}
