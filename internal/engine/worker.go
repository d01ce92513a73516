package engine

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mako10k/goparallel/internal/materializer"
	"github.com/mako10k/goparallel/internal/perr"
	"github.com/mako10k/goparallel/internal/tempdir"
	"github.com/mako10k/goparallel/internal/template"
)

// spawnConfig bundles the per-run, read-only spawn parameters every
// worker needs. It is built once in engine.go and only ever read
// afterwards: spec.md §5 calls out tokens as "constructed once and
// treated as read-only thereafter", shared with no locking.
type spawnConfig struct {
	tokens    []template.Token   // flat tokens, shell mode
	words     [][]template.Token // per-word tokens, no-shell/argv mode
	shellMode bool
	pipe      bool
	pipeFile  string // spilled --pipe stream (tempdir.Manager.PipeInputPath), set only when the stdin-as-job-list fallback was bypassed
	silent    bool
	quote     bool
	timeout   time.Duration
	totalJobs uint64
	ungroup   bool
}

// runWorker is one of the P worker-pool slots (C7): pull a job, run it
// to completion, publish its outputRecord, repeat until jobCh closes. It
// returns only on a fatal IOError (spec.md §7: temp-file I/O failures
// are engine-fatal because ordering can no longer be upheld); every
// other per-job failure is folded into the published outputRecord.
func runWorker(ctx context.Context, slot uint32, jobCh <-chan job, admit *admitter, cfg spawnConfig, mgr *tempdir.Manager, completionCh chan<- outputRecord, sup *Supervisor, logger *zap.Logger) error {
	for j := range jobCh {
		rec := template.Record(materializer.SplitRecord(j.line))
		out, err := runJob(ctx, slot, j, rec, admit, cfg, mgr, sup, logger)
		if err != nil {
			return err
		}
		select {
		case completionCh <- out:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func runJob(ctx context.Context, slot uint32, j job, rec template.Record, admit *admitter, cfg spawnConfig, mgr *tempdir.Manager, sup *Supervisor, logger *zap.Logger) (outputRecord, error) {
	out := outputRecord{index: j.index}

	if err := admit.admit(ctx); err != nil {
		out.exitCode = -1
		out.signalled = true
		return out, nil
	}

	tctx := template.Context{JobIndex: j.index, Slot: slot, JobTotal: cfg.totalJobs, Separator: byte(os.PathSeparator)}

	var argv []string
	var shellCmd string
	var err error
	if cfg.shellMode {
		shellCmd, err = template.Expand(cfg.tokens, rec, tctx, cfg.quote)
	} else {
		argv, err = template.ExpandArgv(cfg.words, rec, tctx, cfg.quote)
	}
	if err != nil {
		logger.Warn("expansion failed", zap.Uint64("job", j.index), zap.Error(err))
		out.exitCode = 255
		return out, nil
	}

	var cmd *exec.Cmd
	if cfg.shellMode {
		shName, shFlag := resolveShell()
		cmd = exec.Command(shName, shFlag, shellCmd)
	} else {
		if len(argv) == 0 {
			logger.Warn("empty command after expansion", zap.Uint64("job", j.index))
			out.exitCode = 255
			return out, nil
		}
		cmd = exec.Command(argv[0], argv[1:]...)
	}
	setPgid(cmd)

	var stdinFile *os.File
	if cfg.pipe {
		stdinFile, err = attachStdin(cmd, rec, cfg)
		if err != nil {
			logger.Error("cannot open piped stdin", zap.Uint64("job", j.index), zap.Error(err))
			return out, perr.IO("cannot open piped stdin", err)
		}
	}
	if stdinFile != nil {
		defer stdinFile.Close()
	}

	closers, err := attachOutputs(cmd, j.index, cfg, mgr, &out)
	if err != nil {
		logger.Error("cannot create job output spill file", zap.Uint64("job", j.index), zap.Error(err))
		return out, perr.IO("cannot create job output spill file", err)
	}
	defer closeAll(closers)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		logger.Warn("spawn failed", zap.Uint64("job", j.index), zap.String("argv0", argvName(cfg, argv, shellCmd)), zap.Error(err))
		out.exitCode = 255
		return out, nil
	}
	if sup != nil {
		sup.Track(cmd.Process.Pid)
		defer sup.Untrack(cmd.Process.Pid)
	}
	logger.Info("job spawned", zap.Uint64("job", j.index), zap.Uint32("slot", slot), zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeoutC <-chan time.Time
	if cfg.timeout > 0 {
		timer := time.NewTimer(cfg.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case waitErr := <-done:
		out.exitCode, out.signalled = exitCodeOf(waitErr)
	case <-timeoutC:
		_ = killGroup(cmd.Process.Pid, false)
		<-done
		out.exitCode = -15
		out.signalled = true
	case <-ctx.Done():
		_ = killGroup(cmd.Process.Pid, false)
		<-done
		out.exitCode = -1
		out.signalled = true
	}
	out.wallMS = time.Since(start).Milliseconds()

	logger.Info("job finished", zap.Uint64("job", j.index), zap.Int("exit", out.exitCode), zap.Int64("wall_ms", out.wallMS))
	return out, nil
}

func argvName(cfg spawnConfig, argv []string, shellCmd string) string {
	if cfg.shellMode {
		return shellCmd
	}
	if len(argv) == 0 {
		return ""
	}
	return argv[0]
}

// attachStdin wires --pipe's child stdin (spec.md §6 worked scenario S7).
// When the collector bypassed the stdin-as-job-list fallback (cfg.pipeFile
// set), the whole spilled stream feeds this one job's stdin directly, no
// per-record join. Otherwise --pipe falls back to joining the record's own
// fields with newlines, the behaviour when --pipe is combined with an
// explicit ::: list rather than piped stdin.
func attachStdin(cmd *exec.Cmd, rec template.Record, cfg spawnConfig) (*os.File, error) {
	if cfg.pipeFile == "" {
		cmd.Stdin = strings.NewReader(strings.Join([]string(rec), "\n"))
		return nil, nil
	}
	f, err := os.Open(cfg.pipeFile)
	if err != nil {
		return nil, err
	}
	cmd.Stdin = f
	return f, nil
}

// attachOutputs wires stdout/stderr per spec.md §4.7 step 5: grouped
// mode spills to per-job temp files the merger later streams and
// unlinks; ungrouped mode tees straight through, no disk spill.
// --silent drops stdout entirely in either mode.
func attachOutputs(cmd *exec.Cmd, index uint64, cfg spawnConfig, mgr *tempdir.Manager, out *outputRecord) ([]*os.File, error) {
	var closers []*os.File

	if cfg.ungroup {
		if !cfg.silent {
			cmd.Stdout = os.Stdout
		}
		cmd.Stderr = os.Stderr
		return closers, nil
	}

	stdoutPath, stderrPath := mgr.JobPaths(index)
	if !cfg.silent {
		f, err := mgr.Create(stdoutPath)
		if err != nil {
			return closers, err
		}
		closers = append(closers, f)
		cmd.Stdout = f
		out.stdoutPath = stdoutPath
	}
	f, err := mgr.Create(stderrPath)
	if err != nil {
		return closers, err
	}
	closers = append(closers, f)
	cmd.Stderr = f
	out.stderrPath = stderrPath
	return closers, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// exitCodeOf decodes an exec.Cmd.Wait error into the child's exit code
// and whether it died from a signal (spec.md §3's OutputRecord, §6's
// "bitwise-ORed with 1 if any child was killed by signal").
func exitCodeOf(err error) (code int, signalled bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal()), true
			}
			return status.ExitStatus(), false
		}
		return exitErr.ExitCode(), false
	}
	return 255, false
}
