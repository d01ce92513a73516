package engine

import (
	"os"
	"os/exec"
	"runtime"
)

// resolveShell implements spec.md §6's Environment rule: $SHELL is
// consulted when shell mode is on and the platform is Unix, falling
// back to dash if found on PATH, else sh. Windows always uses cmd.
func resolveShell() (name string, flag string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh, "-c"
	}
	if path, err := exec.LookPath("dash"); err == nil {
		return path, "-c"
	}
	return "sh", "-c"
}
