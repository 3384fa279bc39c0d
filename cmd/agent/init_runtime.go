package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/adapter/backend"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/adapter/tool"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/config"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/logger"
	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/tracer"
)

// runtime bundles everything a CLI command needs: the routed backend,
// the tool registry, and the shutdown hooks.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	backend  *backend.Composite
	registry *tool.Registry
	shutdown func()
}

// buildRuntime loads config, scaffolds the workspace, and wires the backends
// and tools together.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}

	log, closeLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		closeLogger()
		return nil, err
	}
	shutdown := func() {
		shutdownTracer(context.Background())
		closeLogger()
	}

	if err := config.EnsureWorkspace(cfg.Workspace); err != nil {
		shutdown()
		return nil, err
	}

	def, err := buildDefaultBackend(cfg, log)
	if err != nil {
		shutdown()
		return nil, err
	}

	routes := make(map[string]domain.Backend, len(cfg.Routes))
	for _, rc := range cfg.Routes {
		if err := os.MkdirAll(rc.Root, 0755); err != nil {
			shutdown()
			return nil, fmt.Errorf("create route root %s: %w", rc.Root, err)
		}
		var opts []backend.FilesystemOption
		if rc.ReadOnly {
			opts = append(opts, backend.WithReadOnly())
		}
		opts = append(opts, backend.WithFilesystemLogger(log))
		fs, err := backend.NewFilesystem(rc.Root, opts...)
		if err != nil {
			shutdown()
			return nil, fmt.Errorf("route %s: %w", rc.Prefix, err)
		}
		routes[rc.Prefix] = fs
	}

	composite, err := backend.NewComposite(def, routes)
	if err != nil {
		shutdown()
		return nil, err
	}

	registry := tool.NewRegistry(log)
	if err := registry.Register(tool.NewFilesystemTool(composite, log)); err != nil {
		shutdown()
		return nil, err
	}
	if err := registry.Register(tool.NewExecuteTool(composite, log)); err != nil {
		shutdown()
		return nil, err
	}

	log.Debug("runtime ready",
		"backend", composite.ID(),
		"routes", len(routes),
	)

	return &runtime{
		cfg:      cfg,
		logger:   log,
		backend:  composite,
		registry: registry,
		shutdown: shutdown,
	}, nil
}

// buildDefaultBackend picks the container backend when one is configured,
// otherwise the local process backend.
func buildDefaultBackend(cfg *config.Config, log *slog.Logger) (domain.Backend, error) {
	if cfg.Workspace.Container != "" {
		return backend.NewDocker(cfg.Workspace.Root, cfg.Workspace.Container,
			backend.WithDockerTimeout(cfg.Execution.Timeout),
			backend.WithDockerMaxOutputChars(cfg.Execution.MaxOutputChars),
			backend.WithContainerWorkdir(cfg.Workspace.ContainerWorkdir),
			backend.WithContainerEnv(cfg.Workspace.ContainerEnv),
			backend.WithDockerLogger(log),
		)
	}
	return backend.NewLocal(cfg.Workspace.Root,
		backend.WithTimeout(cfg.Execution.Timeout),
		backend.WithMaxOutputChars(cfg.Execution.MaxOutputChars),
		backend.WithEnvAllowlist(cfg.Execution.EnvAllowlist),
		backend.WithLogger(log),
	)
}
