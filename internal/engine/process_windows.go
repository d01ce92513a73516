//go:build windows

package engine

import (
	"os"
	"os/exec"
)

// setPgid is a no-op on Windows; job objects would be the analogue but
// are out of scope here (spec.md §4.10 treats Windows cleanup as
// best-effort).
func setPgid(cmd *exec.Cmd) {}

// killGroup terminates pid directly; Windows has no POSIX process-group
// signal, so graceful and forced both hard-kill.
func killGroup(pid int, graceful bool) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
