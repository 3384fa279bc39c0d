package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/adapter/tool"
)

// runExec runs a shell command through the default execution backend and
// mirrors its exit code.
func runExec(args []string) error {
	pos := positional(args)
	if len(pos) < 1 {
		return fmt.Errorf("usage: agent exec COMMAND")
	}
	command := strings.Join(pos, " ")

	ctx := context.Background()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	resp, err := rt.backend.Execute(ctx, command)
	if err != nil {
		return err
	}

	if resp.Output != "" {
		fmt.Println(resp.Output)
	}
	if resp.Truncated {
		fmt.Fprintln(os.Stderr, "(output truncated)")
	}
	if resp.ExitCode != 0 {
		rt.shutdown()
		os.Exit(resp.ExitCode)
	}
	return nil
}

// runServe publishes the tool registry over MCP stdio so an external agent
// runtime can drive the workspace.
func runServe() error {
	ctx := context.Background()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	srv, err := tool.NewMCPServer(rt.registry, "code-execution-deep-agent", version, rt.logger)
	if err != nil {
		return err
	}
	return srv.ServeStdio()
}

func runRead(args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: agent read PATH")
	}
	return invokeFilesystem(map[string]string{"action": "read", "path": pos[0]})
}

func runWrite(args []string) error {
	pos := positional(args)
	if len(pos) != 2 {
		return fmt.Errorf("usage: agent write PATH CONTENT")
	}
	return invokeFilesystem(map[string]string{"action": "write", "path": pos[0], "content": pos[1]})
}

func runEdit(args []string) error {
	pos := positional(args)
	if len(pos) != 3 {
		return fmt.Errorf("usage: agent edit PATH FIND REPLACE")
	}
	return invokeFilesystem(map[string]string{
		"action": "edit", "path": pos[0], "find": pos[1], "replace": pos[2],
	})
}

func runList(args []string) error {
	pos := positional(args)
	path := "/"
	if len(pos) > 0 {
		path = pos[0]
	}
	return invokeFilesystem(map[string]string{"action": "list", "path": path})
}

// invokeFilesystem routes a file operation through the registered
// filesystem tool so schema validation and tracing apply.
func invokeFilesystem(params map[string]string) error {
	ctx := context.Background()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	fsTool, err := rt.registry.Get("filesystem")
	if err != nil {
		return err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}

	result, err := fsTool.Execute(ctx, raw)
	if err != nil {
		return err
	}
	if result.IsError {
		return fmt.Errorf("%s", result.Content)
	}
	if result.Content != "" {
		fmt.Print(result.Content)
		if !strings.HasSuffix(result.Content, "\n") {
			fmt.Println()
		}
	}
	return nil
}
