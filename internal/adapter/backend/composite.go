package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// route binds a virtual path prefix to a backend.
type route struct {
	prefix  string
	backend domain.Backend
}

// Composite presents one logical filesystem over several backends, keyed by
// virtual path prefix. Every file operation is dispatched to the backend
// with the longest registered prefix that matches the path; the matched
// prefix is stripped (a leading "/" is preserved) before forwarding. Paths
// with no matching prefix go to the default backend unchanged.
//
// Execute carries no path and always targets the default backend: non-default
// backends (a read-only reference library, say) are reachable only through
// file operations. The routing table is fixed at construction.
type Composite struct {
	def    domain.Backend
	routes []route // sorted longest prefix first
}

// NewComposite creates a composite router over the default backend and the
// given prefix table. Prefixes must start and end with "/"; a malformed
// table is a configuration error.
func NewComposite(def domain.Backend, routes map[string]domain.Backend) (*Composite, error) {
	if def == nil {
		return nil, domain.NewDomainError("NewComposite", domain.ErrInvalidInput, "nil default backend")
	}

	c := &Composite{def: def}
	for prefix, b := range routes {
		if !strings.HasPrefix(prefix, "/") || !strings.HasSuffix(prefix, "/") || prefix == "/" {
			return nil, domain.NewDomainError("NewComposite", domain.ErrRouteInvalid,
				fmt.Sprintf("prefix %q must start and end with %q", prefix, "/"))
		}
		if b == nil {
			return nil, domain.NewDomainError("NewComposite", domain.ErrRouteInvalid,
				fmt.Sprintf("nil backend for prefix %q", prefix))
		}
		c.routes = append(c.routes, route{prefix: prefix, backend: b})
	}

	// Longest-match dispatch: order the table by descending prefix length so
	// nested prefixes resolve independently of registration order.
	sort.Slice(c.routes, func(i, j int) bool {
		if len(c.routes[i].prefix) != len(c.routes[j].prefix) {
			return len(c.routes[i].prefix) > len(c.routes[j].prefix)
		}
		return c.routes[i].prefix < c.routes[j].prefix
	})

	return c, nil
}

func (c *Composite) ID() string {
	return "composite(" + c.def.ID() + ")"
}

// resolve returns the backend owning path and the path to forward to it.
func (c *Composite) resolve(path string) (domain.Backend, string) {
	for _, r := range c.routes {
		if strings.HasPrefix(path, r.prefix) {
			return r.backend, "/" + strings.TrimPrefix(path, r.prefix)
		}
		// The bare prefix without its trailing slash addresses the route
		// root itself ("/skills" lists the skills backend's root).
		if path == strings.TrimSuffix(r.prefix, "/") {
			return r.backend, "/"
		}
	}
	return c.def, path
}

func (c *Composite) List(path string) ([]domain.FileInfo, error) {
	b, p := c.resolve(path)
	return b.List(p)
}

func (c *Composite) Read(path string) (string, error) {
	b, p := c.resolve(path)
	return b.Read(p)
}

func (c *Composite) Write(path, content string) error {
	b, p := c.resolve(path)
	return b.Write(p, content)
}

func (c *Composite) Edit(path, find, replace string) error {
	b, p := c.resolve(path)
	return b.Edit(p, find, replace)
}

// Execute dispatches to the default backend. When the default backend has no
// execution capability the call fails with domain.ErrExecuteUnsupported.
func (c *Composite) Execute(ctx context.Context, command string) (domain.ExecuteResponse, error) {
	exec, ok := c.def.(domain.Executor)
	if !ok {
		return domain.ExecuteResponse{}, domain.NewDomainError(
			"Composite.Execute", domain.ErrExecuteUnsupported, c.def.ID())
	}
	return exec.Execute(ctx, command)
}
