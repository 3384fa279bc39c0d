//go:build !darwin && !linux

package backend

import (
	"os/exec"
	"time"
)

// setupProcessGroup on platforms without session support falls back to the
// default CommandContext behavior: kill the direct child on cancellation.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = 3 * time.Second
}
