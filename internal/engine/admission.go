package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mako10k/goparallel/internal/perr"
	"github.com/mako10k/goparallel/internal/sysmem"
)

// memFreeHardCap is the §4.9 hard cap on consecutive --memfree waiting
// before the job is admitted anyway.
const memFreeHardCap = 60 * time.Second

// memFreePoll is the §4.9 retry interval while memory stays below the
// --memfree threshold.
const memFreePoll = time.Second

// admitter implements the admission controller (C9): --delay pacing and
// --memfree gating, applied in that order before every spawn.
type admitter struct {
	delay    time.Duration
	memFree  uint64
	logger   *zap.Logger
	mu       sync.Mutex
	lastSpaw time.Time
}

func newAdmitter(delay time.Duration, memFree uint64, logger *zap.Logger) *admitter {
	return &admitter{delay: delay, memFree: memFree, logger: logger}
}

// admit blocks the calling worker until both gates are satisfied, or
// until ctx is cancelled.
func (a *admitter) admit(ctx context.Context) error {
	if err := a.admitDelay(ctx); err != nil {
		return err
	}
	return a.admitMemFree(ctx)
}

// admitDelay sleeps until last_spawn + D, last_spawn shared under a
// lock by all workers (spec.md §4.9 step 1, §5).
func (a *admitter) admitDelay(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	a.mu.Lock()
	now := time.Now()
	next := a.lastSpaw.Add(a.delay)
	if next.Before(now) {
		next = now
	}
	a.lastSpaw = next
	a.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	a.log().Info("admission wait: --delay", zap.Duration("wait", wait))
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// admitMemFree polls sysmem.Available once a second until it clears the
// --memfree threshold, admitting unconditionally past the hard cap
// (spec.md §4.9 step 2, §9 open question (i)).
func (a *admitter) admitMemFree(ctx context.Context) error {
	if a.memFree == 0 {
		return nil
	}
	deadline := time.Now().Add(memFreeHardCap)
	for {
		avail, err := sysmem.Available()
		if err != nil || avail >= a.memFree {
			return nil
		}
		if time.Now().After(deadline) {
			err := perr.Admission("memfree wait exceeded 60s hard cap, admitting anyway", nil)
			a.log().Warn(err.Error(), zap.Uint64("want_bytes", a.memFree), zap.Uint64("avail_bytes", avail))
			return nil
		}
		a.log().Info("admission wait: --memfree", zap.Uint64("want_bytes", a.memFree), zap.Uint64("avail_bytes", avail))
		t := time.NewTimer(memFreePoll)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

func (a *admitter) log() *zap.Logger {
	if a.logger != nil {
		return a.logger
	}
	return zap.NewNop()
}
