//go:build !windows

package tempdir

import "golang.org/x/sys/unix"

// processAlive reports whether pid still exists, using the POSIX
// convention of sending signal 0 (no-op, but EPERM/ESRCH still tell us
// whether the process exists).
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err == unix.EPERM
}
