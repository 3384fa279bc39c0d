package backend

import "unicode/utf8"

// truncationMarker separates the kept head and tail of over-long output.
const truncationMarker = "\n... [truncated] ...\n"

// combineOutput merges captured stdout and stderr: stdout first, then a
// newline and stderr when both are non-empty.
func combineOutput(stdout, stderr string) string {
	out := stdout
	if stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += stderr
	}
	return out
}

// truncateOutput bounds s to max characters by keeping the first and last
// max/2 characters joined with the truncation marker. Head and tail are kept
// because the start of a long log (command echo, early errors) and its end
// (final result) are usually the most informative parts.
func truncateOutput(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	half := max / 2
	head := half
	for head > 0 && !utf8.RuneStart(s[head]) {
		head--
	}
	tail := len(s) - half
	for tail < len(s) && !utf8.RuneStart(s[tail]) {
		tail++
	}
	return s[:head] + truncationMarker + s[tail:], true
}
