// Package config loads and validates the application configuration: the
// workspace backend, execution bounds, the routing table, and the ambient
// logger/tracer settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Execution ExecutionConfig `yaml:"execution"`
	Routes    []RouteConfig   `yaml:"routes"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracer    TracerConfig    `yaml:"tracer"`
}

// WorkspaceConfig describes the default backend: a host directory, optionally
// paired with a running container that commands execute in.
type WorkspaceConfig struct {
	Root    string   `yaml:"root"`
	Subdirs []string `yaml:"subdirs"` // scaffolded under Root at startup

	// Container selects the container process backend when non-empty. The
	// named container must already be running; Root is the host side of its
	// bind mount.
	Container        string            `yaml:"container"`
	ContainerWorkdir string            `yaml:"container_workdir"`
	ContainerEnv     map[string]string `yaml:"container_env,omitempty"`
}

// ExecutionConfig bounds every Execute call.
type ExecutionConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxOutputChars int           `yaml:"max_output_chars"`
	EnvAllowlist   []string      `yaml:"env_allowlist"`
}

// RouteConfig maps a virtual path prefix to an extra filesystem backend.
type RouteConfig struct {
	Prefix   string `yaml:"prefix"`
	Root     string `yaml:"root"`
	ReadOnly bool   `yaml:"read_only"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root:    "./workspace",
			Subdirs: []string{"data", "scripts", "results", "reports"},
		},
		Execution: ExecutionConfig{
			Timeout:        120 * time.Second,
			MaxOutputChars: 50_000,
			EnvAllowlist:   []string{"HOME", "LANG", "LC_ALL", "TZ", "USER"},
		},
		Routes: []RouteConfig{
			{Prefix: "/skills/", Root: "./skills", ReadOnly: true},
		},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer: TracerConfig{Enabled: false, Exporter: "noop"},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("parse %s: %v", path, err))
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps DEEPAGENT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEEPAGENT_WORKSPACE_ROOT"); v != "" {
		cfg.Workspace.Root = v
	}
	if v := os.Getenv("DEEPAGENT_CONTAINER"); v != "" {
		cfg.Workspace.Container = v
	}
	if v := os.Getenv("DEEPAGENT_CONTAINER_WORKDIR"); v != "" {
		cfg.Workspace.ContainerWorkdir = v
	}
	if v := os.Getenv("DEEPAGENT_EXECUTION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Execution.Timeout = d
		}
	}
	if v := os.Getenv("DEEPAGENT_MAX_OUTPUT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Execution.MaxOutputChars = n
		}
	}
	if v := os.Getenv("DEEPAGENT_ENV_ALLOWLIST"); v != "" {
		cfg.Execution.EnvAllowlist = splitList(v)
	}
	if v := os.Getenv("DEEPAGENT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DEEPAGENT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("DEEPAGENT_TRACER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracer.Enabled = b
		}
	}
	if v := os.Getenv("DEEPAGENT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// Validate fails fast on configuration errors instead of letting them
// surface mid-session.
func Validate(cfg *Config) error {
	if cfg.Workspace.Root == "" {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad, "workspace.root is empty")
	}
	if cfg.Execution.Timeout <= 0 {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad,
			fmt.Sprintf("execution.timeout %v must be positive", cfg.Execution.Timeout))
	}
	if cfg.Execution.MaxOutputChars <= 0 {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad,
			fmt.Sprintf("execution.max_output_chars %d must be positive", cfg.Execution.MaxOutputChars))
	}
	for _, name := range cfg.Execution.EnvAllowlist {
		if name == "" || strings.ContainsAny(name, "= \t") {
			return domain.NewDomainError("config.Validate", domain.ErrConfigLoad,
				fmt.Sprintf("malformed env allowlist entry %q", name))
		}
	}
	seen := map[string]bool{}
	for _, r := range cfg.Routes {
		if !strings.HasPrefix(r.Prefix, "/") || !strings.HasSuffix(r.Prefix, "/") || r.Prefix == "/" {
			return domain.NewDomainError("config.Validate", domain.ErrRouteInvalid,
				fmt.Sprintf("route prefix %q must start and end with /", r.Prefix))
		}
		if seen[r.Prefix] {
			return domain.NewDomainError("config.Validate", domain.ErrRouteInvalid,
				fmt.Sprintf("duplicate route prefix %q", r.Prefix))
		}
		seen[r.Prefix] = true
		if r.Root == "" {
			return domain.NewDomainError("config.Validate", domain.ErrRouteInvalid,
				fmt.Sprintf("route %q has empty root", r.Prefix))
		}
	}
	return nil
}

// EnsureWorkspace creates the workspace root and its configured subdirs.
// Called explicitly at startup; directory scaffolding is never an import-time
// side effect.
func EnsureWorkspace(ws WorkspaceConfig) error {
	if err := os.MkdirAll(ws.Root, 0755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	for _, sub := range ws.Subdirs {
		if err := os.MkdirAll(filepath.Join(ws.Root, sub), 0755); err != nil {
			return fmt.Errorf("create workspace subdir %s: %w", sub, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
