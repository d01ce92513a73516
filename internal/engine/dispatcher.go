package engine

import (
	"bufio"
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mako10k/goparallel/internal/perr"
)

// runDispatcher implements C6: sequentially reads unprocessed_inputs,
// pairs each line with a monotonically increasing 1-based job_index,
// and hands the pair to jobCh. It acquires one unit of pendingSem per
// job before sending — the back-pressure gate §4.8 describes, shared
// with the merger which releases a unit once a job is emitted. jobCh is
// always closed before returning, signalling EOF to the worker pool.
func runDispatcher(ctx context.Context, path string, jobCh chan<- job, pendingSem *semaphore.Weighted, logger *zap.Logger) error {
	defer close(jobCh)

	f, err := os.Open(path)
	if err != nil {
		return perr.IO("cannot open unprocessed-inputs file", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var idx uint64
	for sc.Scan() {
		if err := pendingSem.Acquire(ctx, 1); err != nil {
			return nil
		}
		idx++
		select {
		case jobCh <- job{index: idx, line: sc.Text()}:
		case <-ctx.Done():
			pendingSem.Release(1)
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return perr.IO("error reading unprocessed-inputs file", err)
	}
	logger.Debug("dispatch complete", zap.Uint64("total_jobs", idx))
	return nil
}
