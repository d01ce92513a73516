// Package sysmem implements the --memfree data source (C9): parsing a
// K/M/G-suffixed byte-count option and querying currently available
// memory. Grounded on ja7ad-consumption's pkg/types.Bytes (humanized
// byte formatting) and pkg/system/proc (raw /proc readers), reworked
// here as the inverse operation — parsing a size instead of formatting
// one — plus a live query instead of a historical counter.
package sysmem

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBytes parses a size like "512", "512K", "4M", "2G" (1024-based,
// case-insensitive, spec.md §6) into a byte count.
func ParseBytes(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := uint64(1)
	suffix := s[len(s)-1]
	switch suffix {
	case 'k', 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * mult, nil
}
