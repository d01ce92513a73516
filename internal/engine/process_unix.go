//go:build !windows

package engine

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setPgid puts the child in its own process group so a single kill
// signal reaches the whole pipeline a shell-mode command may have
// spawned (spec.md §4.7 step 6, §4.10).
func setPgid(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killGroup signals pid's process group. graceful sends SIGTERM,
// otherwise SIGKILL (spec.md §4.7 step 6 for per-job timeout, §4.10 for
// the two-stage interrupt escalation).
func killGroup(pid int, graceful bool) error {
	sig := unix.SIGKILL
	if graceful {
		sig = unix.SIGTERM
	}
	return unix.Kill(-pid, sig)
}
