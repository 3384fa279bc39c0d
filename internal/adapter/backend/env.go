package backend

import "strings"

// BuildEnv filters a host environment ("K=V" entries, as from os.Environ)
// down to the allowlisted variable names. PATH is force-included when present
// on the host and not already selected, because command resolution would
// otherwise fail for nearly all commands.
//
// This is a pure function so allowlist behavior is testable without spawning
// a process.
func BuildEnv(environ []string, allowlist []string) []string {
	allowed := make(map[string]bool, len(allowlist))
	for _, name := range allowlist {
		allowed[name] = true
	}

	var env []string
	havePath := false
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if allowed[name] {
			env = append(env, kv)
			if name == "PATH" {
				havePath = true
			}
		}
	}

	if !havePath {
		for _, kv := range environ {
			if strings.HasPrefix(kv, "PATH=") {
				env = append(env, kv)
				break
			}
		}
	}

	return env
}
