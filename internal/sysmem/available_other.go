//go:build !linux

package sysmem

import "errors"

// Available has no portable non-Linux implementation here; callers treat
// its error as "unknown", which the admission controller (§4.9) maps to
// "do not gate" rather than an error, since --memfree is a best-effort
// safety valve, not a correctness requirement.
func Available() (uint64, error) {
	return 0, errors.New("sysmem: available memory query not implemented on this platform")
}
