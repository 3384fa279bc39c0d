package tool

import (
	"log/slog"
	"sync"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Registry holds named tools.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]domain.Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
// If logger is non-nil, tools are wrapped with schema validation on Register;
// compilation errors are logged and the tool is registered unwrapped.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}
}

// Register adds a tool. Returns error if name already registered.
func (r *Registry) Register(t domain.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return domain.NewDomainError("Registry.Register", domain.ErrInvalidInput,
			"tool "+name+" already registered")
	}

	if r.logger != nil {
		wrapped, err := WithSchemaValidation(t)
		if err != nil {
			r.logger.Warn("schema validation disabled for tool",
				"tool", name, "error", err)
		} else {
			t = wrapped
		}
	}

	r.tools[name] = t
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrToolNotFound, name)
	}
	return t, nil
}

// Schemas returns the schemas of all registered tools.
func (r *Registry) Schemas() []domain.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]domain.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		schemas = append(schemas, t.Schema())
	}
	return schemas
}
