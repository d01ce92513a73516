package engine

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// gracePeriod is the §4.10 short grace given to children after SIGTERM
// before escalating to SIGKILL.
const gracePeriod = 2 * time.Second

// Supervisor implements the signal/cancellation supervisor (C10): it
// tracks every live child's process group and escalates on repeated
// interrupts. Workers Track a pid right after Start and Untrack it once
// the job is done, so the supervisor always signals exactly the
// currently-running children.
type Supervisor struct {
	logger    *zap.Logger
	mu        sync.Mutex
	groups    map[int]struct{}
	signalled bool
}

// NewSupervisor builds an idle Supervisor; call Watch to arm it.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{logger: logger, groups: make(map[int]struct{})}
}

// Track records pid (its own process group leader, see setPgid) as live.
func (s *Supervisor) Track(pid int) {
	s.mu.Lock()
	s.groups[pid] = struct{}{}
	s.mu.Unlock()
}

// Untrack removes pid once its job has completed.
func (s *Supervisor) Untrack(pid int) {
	s.mu.Lock()
	delete(s.groups, pid)
	s.mu.Unlock()
}

func (s *Supervisor) snapshot() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.groups))
	for pid := range s.groups {
		out = append(out, pid)
	}
	return out
}

// Signalled reports whether Watch has observed at least one SIGINT/SIGTERM,
// so Run can override the merger's per-job exit code with the unconditional
// 130 spec.md §6 requires on SIGINT rather than whatever a cancelled job
// happened to report.
func (s *Supervisor) Signalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalled
}

func (s *Supervisor) signalAll(graceful bool) {
	for _, pid := range s.snapshot() {
		_ = killGroup(pid, graceful)
	}
}

// Watch blocks until ctx is done (normal completion) or sigCh delivers
// a signal. On the first signal it records it (see Signalled), calls
// cancel, and forwards SIGTERM to every live child. It then waits for a
// second signal (SIGKILL to all, exit code 130), the end of gracePeriod
// (SIGKILL to all), or ctx being done, whichever comes first. When cancel
// cancels ctx itself, as it does in Run, ctx is already done at that
// point: Watch returns right after the SIGTERM, with no grace period and
// no handling of a later signal, and the workers, seeing their context
// cancelled, SIGKILL their own children.
func (s *Supervisor) Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	select {
	case <-ctx.Done():
		return
	case <-sigCh:
	}

	s.logger.Warn("interrupt received: stopping dispatch and terminating running jobs")
	s.mu.Lock()
	s.signalled = true
	s.mu.Unlock()
	cancel()
	s.signalAll(true)

	escalate := time.NewTimer(gracePeriod)
	defer escalate.Stop()
	select {
	case <-sigCh:
		s.logger.Warn("second interrupt: killing all running jobs")
		s.signalAll(false)
		os.Exit(130)
	case <-escalate.C:
		s.signalAll(false)
	case <-ctx.Done():
	}
}
