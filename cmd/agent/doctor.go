package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()

	// Some checks still work when the config fails to load; Load has
	// already applied env overrides and validated.
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Workspace root", Fn: checkWorkspaceRoot},
		{Name: "Route roots", Fn: checkRouteRoots},
		{Name: "Shell", Fn: checkShell},
		{Name: "Container", Fn: checkContainer},
	}

	fmt.Println("agent doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile returns a check that verifies the config file loads and validates.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(cfg *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("failed to load %s: %v", cfgPath, cfgErr),
				Fix:     "fix the YAML syntax or remove the file to use defaults",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s not found, using defaults", cfgPath),
			}
		}
		if err := config.Validate(cfg); err != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: err.Error(),
				Fix:     "correct the invalid setting in " + cfgPath,
			}
		}
		return CheckResult{Status: StatusPass, Message: cfgPath + " is valid"}
	}
}

func checkWorkspaceRoot(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "no config available"}
	}
	info, err := os.Stat(cfg.Workspace.Root)
	if os.IsNotExist(err) {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s does not exist yet (created on first run)", cfg.Workspace.Root),
		}
	}
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{
			Status:  StatusFail,
			Message: cfg.Workspace.Root + " exists but is not a directory",
			Fix:     "remove the file or point workspace.root elsewhere",
		}
	}
	return CheckResult{Status: StatusPass, Message: cfg.Workspace.Root}
}

func checkRouteRoots(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "no config available"}
	}
	if len(cfg.Routes) == 0 {
		return CheckResult{Status: StatusPass, Message: "no routes configured"}
	}
	var missing []string
	for _, rc := range cfg.Routes {
		if info, err := os.Stat(rc.Root); err != nil || !info.IsDir() {
			missing = append(missing, fmt.Sprintf("%s -> %s", rc.Prefix, rc.Root))
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: "missing route roots: " + strings.Join(missing, ", "),
			Fix:     "roots are created on first run; pre-create them to silence this",
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d route(s) resolvable", len(cfg.Routes))}
}

func checkShell(_ *config.Config) CheckResult {
	if _, err := os.Stat("/bin/sh"); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "/bin/sh not found",
			Fix:     "install a POSIX shell",
		}
	}
	return CheckResult{Status: StatusPass, Message: "/bin/sh available"}
}

func checkContainer(cfg *config.Config) CheckResult {
	if cfg == nil || cfg.Workspace.Container == "" {
		return CheckResult{Status: StatusPass, Message: "local execution (no container configured)"}
	}

	if _, err := exec.LookPath("docker"); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "docker CLI not found but a container is configured",
			Fix:     "install docker or clear workspace.container",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "docker", "inspect",
		"--format", "{{.State.Running}}", cfg.Workspace.Container).CombinedOutput()
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("container %q not inspectable: %s", cfg.Workspace.Container, strings.TrimSpace(string(out))),
			Fix:     "start the container: docker start " + cfg.Workspace.Container,
		}
	}
	if strings.TrimSpace(string(out)) != "true" {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("container %q exists but is not running", cfg.Workspace.Container),
			Fix:     "docker start " + cfg.Workspace.Container,
		}
	}
	return CheckResult{Status: StatusPass, Message: cfg.Workspace.Container + " is running"}
}
