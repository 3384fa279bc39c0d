package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// recordingBackend captures the paths forwarded to it.
type recordingBackend struct {
	id       string
	lastPath string
}

func (r *recordingBackend) ID() string { return r.id }
func (r *recordingBackend) List(path string) ([]domain.FileInfo, error) {
	r.lastPath = path
	return nil, nil
}
func (r *recordingBackend) Read(path string) (string, error) {
	r.lastPath = path
	return "", nil
}
func (r *recordingBackend) Write(path, content string) error {
	r.lastPath = path
	return nil
}
func (r *recordingBackend) Edit(path, find, replace string) error {
	r.lastPath = path
	return nil
}

// recordingExecutor additionally records executed commands.
type recordingExecutor struct {
	recordingBackend
	lastCommand string
}

func (r *recordingExecutor) Execute(_ context.Context, command string) (domain.ExecuteResponse, error) {
	r.lastCommand = command
	return domain.ExecuteResponse{Output: "ok\n"}, nil
}

func TestCompositeDispatch(t *testing.T) {
	def := &recordingBackend{id: "A"}
	skills := &recordingBackend{id: "B"}
	c, err := NewComposite(def, map[string]domain.Backend{"/skills/": skills})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Read("/skills/foo/SKILL.md"); err != nil {
		t.Fatal(err)
	}
	if skills.lastPath != "/foo/SKILL.md" {
		t.Errorf("skills path = %q, want %q", skills.lastPath, "/foo/SKILL.md")
	}

	if _, err := c.Read("/data/x.csv"); err != nil {
		t.Fatal(err)
	}
	if def.lastPath != "/data/x.csv" {
		t.Errorf("default path = %q, want unchanged %q", def.lastPath, "/data/x.csv")
	}
}

func TestCompositeBarePrefixAddressesRouteRoot(t *testing.T) {
	skills := &recordingBackend{id: "B"}
	c, err := NewComposite(&recordingBackend{id: "A"}, map[string]domain.Backend{"/skills/": skills})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.List("/skills"); err != nil {
		t.Fatal(err)
	}
	if skills.lastPath != "/" {
		t.Errorf("path = %q, want %q", skills.lastPath, "/")
	}
}

func TestCompositeLongestPrefixWins(t *testing.T) {
	outer := &recordingBackend{id: "outer"}
	inner := &recordingBackend{id: "inner"}
	c, err := NewComposite(&recordingBackend{id: "def"}, map[string]domain.Backend{
		"/skills/":     outer,
		"/skills/web/": inner,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Read("/skills/web/search.md"); err != nil {
		t.Fatal(err)
	}
	if inner.lastPath != "/search.md" {
		t.Errorf("inner path = %q (outer saw %q)", inner.lastPath, outer.lastPath)
	}

	if _, err := c.Read("/skills/pdf/SKILL.md"); err != nil {
		t.Fatal(err)
	}
	if outer.lastPath != "/pdf/SKILL.md" {
		t.Errorf("outer path = %q", outer.lastPath)
	}
}

func TestCompositeAllOpsRoute(t *testing.T) {
	routed := &recordingBackend{id: "B"}
	c, err := NewComposite(&recordingBackend{id: "A"}, map[string]domain.Backend{"/ref/": routed})
	if err != nil {
		t.Fatal(err)
	}

	c.List("/ref/dir")
	if routed.lastPath != "/dir" {
		t.Errorf("List path = %q", routed.lastPath)
	}
	c.Write("/ref/f.txt", "x")
	if routed.lastPath != "/f.txt" {
		t.Errorf("Write path = %q", routed.lastPath)
	}
	c.Edit("/ref/f.txt", "a", "b")
	if routed.lastPath != "/f.txt" {
		t.Errorf("Edit path = %q", routed.lastPath)
	}
}

func TestCompositeExecuteTargetsDefault(t *testing.T) {
	def := &recordingExecutor{recordingBackend: recordingBackend{id: "A"}}
	routed := &recordingExecutor{recordingBackend: recordingBackend{id: "B"}}
	c, err := NewComposite(def, map[string]domain.Backend{"/skills/": routed})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Execute(context.Background(), "ls /skills")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Output != "ok\n" {
		t.Errorf("Output = %q", resp.Output)
	}
	if def.lastCommand != "ls /skills" {
		t.Errorf("default command = %q", def.lastCommand)
	}
	if routed.lastCommand != "" {
		t.Errorf("routed backend must not execute, got %q", routed.lastCommand)
	}
}

func TestCompositeExecuteUnsupported(t *testing.T) {
	c, err := NewComposite(&recordingBackend{id: "A"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Execute(context.Background(), "echo hi")
	if !errors.Is(err, domain.ErrExecuteUnsupported) {
		t.Errorf("expected ErrExecuteUnsupported, got %v", err)
	}
}

func TestCompositeInvalidConstruction(t *testing.T) {
	def := &recordingBackend{id: "A"}

	if _, err := NewComposite(nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("nil default: got %v", err)
	}
	for _, prefix := range []string{"skills/", "/skills", "/", ""} {
		_, err := NewComposite(def, map[string]domain.Backend{prefix: def})
		if !errors.Is(err, domain.ErrRouteInvalid) {
			t.Errorf("prefix %q: expected ErrRouteInvalid, got %v", prefix, err)
		}
	}
	if _, err := NewComposite(def, map[string]domain.Backend{"/x/": nil}); !errors.Is(err, domain.ErrRouteInvalid) {
		t.Errorf("nil route backend: got %v", err)
	}
}

func TestCompositeID(t *testing.T) {
	c, err := NewComposite(&recordingBackend{id: "local-exec-workspace"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID() != "composite(local-exec-workspace)" {
		t.Errorf("ID = %q", c.ID())
	}
}

// TestCompositeRoundTrip writes through the router into a real backend and
// reads the same virtual path back.
func TestCompositeRoundTrip(t *testing.T) {
	wsDir := t.TempDir()
	skillsDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(skillsDir, "pdf"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillsDir, "pdf", "SKILL.md"), []byte("# PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	ws, err := NewFilesystem(wsDir)
	if err != nil {
		t.Fatal(err)
	}
	skills, err := NewFilesystem(skillsDir, WithReadOnly())
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewComposite(ws, map[string]domain.Backend{"/skills/": skills})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Write("/data/x.csv", "a,b\n1,2\n"); err != nil {
		t.Fatal(err)
	}
	got, err := c.Read("/data/x.csv")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a,b\n1,2\n" {
		t.Errorf("round trip = %q", got)
	}

	skill, err := c.Read("/skills/pdf/SKILL.md")
	if err != nil {
		t.Fatal(err)
	}
	if skill != "# PDF" {
		t.Errorf("skill read = %q", skill)
	}

	if err := c.Write("/skills/pdf/SKILL.md", "overwrite"); !errors.Is(err, domain.ErrReadOnlyBackend) {
		t.Errorf("write to read-only route: got %v", err)
	}
}

func FuzzCompositeResolve(f *testing.F) {
	def := &recordingBackend{id: "def"}
	routed := &recordingBackend{id: "routed"}
	c, err := NewComposite(def, map[string]domain.Backend{"/skills/": routed})
	if err != nil {
		f.Fatal(err)
	}

	f.Add("/skills/foo")
	f.Add("/skillsfoo")
	f.Add("/data/x")
	f.Add("")
	f.Add("/skills/")
	f.Add("//skills//x")

	f.Fuzz(func(t *testing.T, path string) {
		b, forwarded := c.resolve(path)
		switch b {
		case routed:
			// Invariant: routed paths had the prefix and keep a leading "/".
			if path != "/skills" && !hasPrefix(path, "/skills/") {
				t.Errorf("path %q routed without prefix", path)
			}
			if len(forwarded) == 0 || forwarded[0] != '/' {
				t.Errorf("forwarded path %q lost leading slash", forwarded)
			}
		case def:
			if forwarded != path {
				t.Errorf("default path changed: %q -> %q", path, forwarded)
			}
		}
	})
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
