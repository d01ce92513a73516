//go:build linux

package sysmem

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Available reports currently available memory in bytes. It prefers
// /proc/meminfo's MemAvailable field — the same file ja7ad-consumption's
// pkg/system/proc reads for per-PID /proc/<pid>/stat accounting,
// generalised here to the whole-system figure --memfree needs — and
// falls back to unix.Sysinfo's free-RAM counter when /proc is
// unreadable (some restricted containers mount a minimal /proc).
func Available() (uint64, error) {
	if kb, err := memAvailableFromProc(); err == nil {
		return kb, nil
	}
	return availableFromSysinfo()
}

func memAvailableFromProc() (uint64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, os.ErrNotExist
}

func availableFromSysinfo() (uint64, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0, err
	}
	return uint64(si.Freeram) * uint64(si.Unit), nil
}
