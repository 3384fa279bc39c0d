package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "exec":
		if err := runExec(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "exec: %v\n", err)
			os.Exit(1)
		}
	case "read":
		if err := runRead(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			os.Exit(1)
		}
	case "write":
		if err := runWrite(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
	case "edit":
		if err := runEdit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "edit: %v\n", err)
			os.Exit(1)
		}
	case "ls":
		if err := runList(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "ls: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'agent --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`agent - sandboxed execution workspace for code-running agents

USAGE:
    agent COMMAND [ARGS]

COMMANDS:
    exec COMMAND         Run a shell command in the workspace
    read PATH            Print a workspace file
    write PATH CONTENT   Create or overwrite a workspace file
    edit PATH FIND REPL  Replace the first occurrence of FIND in a file
    ls [PATH]            List a workspace directory
    serve                Publish the tools over MCP on stdin/stdout
    doctor               Run health checks on your setup

FLAGS:
    -h, --help           Show this help message
    --config PATH        Config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: DEEPAGENT_* variables override config

EXAMPLES:
    agent exec 'python3 scripts/analyze.py'
    agent write /data/input.csv "$(cat input.csv)"
    agent read /results/summary.txt
    agent ls /skills/
    agent serve
    agent doctor`)
}

// configPath returns the config file path from --config, or the default.
func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return "./config.yaml"
}

// positional returns the arguments before any flag.
func positional(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}
