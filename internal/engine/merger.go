package engine

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mako10k/goparallel/internal/tempdir"
)

// runMerger implements C8: in grouped mode it holds a pending map keyed
// by job index and an emit pointer next_to_emit, streaming a job's
// spilled output only once every lower index has been emitted; in
// ungrouped mode workers have already teed output directly, so the
// merger only tracks exit codes. It returns the aggregated exit code
// spec.md §6 defines: 0 if every child exited 0, otherwise the first
// failing job's exit code (by index, not arrival order), OR'd with 1 if
// that job was signal-killed.
func runMerger(ctx context.Context, completionCh <-chan outputRecord, ungroup bool, pendingSem *semaphore.Weighted, mgr *tempdir.Manager, haltFailCount int, haltCancel context.CancelFunc, logger *zap.Logger) int {
	pending := make(map[uint64]outputRecord)
	var next uint64 = 1
	var failedJobs int64
	var firstFailIndex uint64
	var firstFailCode int
	var firstFailSignalled bool
	epipe := false

	noteFailure := func(rec outputRecord) {
		if rec.exitCode == 0 {
			return
		}
		failedJobs++
		if firstFailIndex == 0 || rec.index < firstFailIndex {
			firstFailIndex = rec.index
			firstFailCode = rec.exitCode
			firstFailSignalled = rec.signalled
		}
		if haltFailCount > 0 && failedJobs >= int64(haltFailCount) {
			logger.Warn("halt threshold reached, stopping dispatch", zap.Int64("failed_jobs", failedJobs))
			haltCancel()
		}
	}

	emitOne := func(rec outputRecord) {
		if !ungroup {
			if !epipe {
				if err := streamAndUnlink(rec, mgr); err != nil {
					logger.Warn("merger emit failed, draining remaining output", zap.Uint64("job", rec.index), zap.Error(err))
					epipe = true
				}
			} else {
				discardAndUnlink(rec, mgr)
			}
		}
		pendingSem.Release(1)
	}

	for rec := range completionCh {
		noteFailure(rec)
		if ungroup {
			emitOne(rec)
			continue
		}
		if rec.index != next {
			pending[rec.index] = rec
			continue
		}
		emitOne(rec)
		next++
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			emitOne(r)
			next++
		}
	}

	if firstFailIndex == 0 {
		return 0
	}
	code := firstFailCode
	if firstFailSignalled {
		code |= 1
	}
	return code
}

func streamAndUnlink(rec outputRecord, mgr *tempdir.Manager) error {
	if rec.stdoutPath != "" {
		err := streamFile(rec.stdoutPath, os.Stdout)
		_ = mgr.Forget(rec.stdoutPath)
		if err != nil {
			return err
		}
	}
	if rec.stderrPath != "" {
		err := streamFile(rec.stderrPath, os.Stderr)
		_ = mgr.Forget(rec.stderrPath)
		if err != nil {
			return err
		}
	}
	return nil
}

func discardAndUnlink(rec outputRecord, mgr *tempdir.Manager) {
	if rec.stdoutPath != "" {
		_ = mgr.Forget(rec.stdoutPath)
	}
	if rec.stderrPath != "" {
		_ = mgr.Forget(rec.stderrPath)
	}
}

func streamFile(path string, dst io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}
