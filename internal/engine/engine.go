// Package engine wires the CORE runtime (C1-C11 of spec.md §2) into one
// Run call: tokenise, collect and permute inputs, materialise them to
// disk, then dispatch, run, and merge jobs across a fixed worker pool.
package engine

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mako10k/goparallel/internal/cli"
	"github.com/mako10k/goparallel/internal/input"
	"github.com/mako10k/goparallel/internal/materializer"
	"github.com/mako10k/goparallel/internal/tempdir"
	"github.com/mako10k/goparallel/internal/template"
)

// Engine owns one run's configuration and logger.
type Engine struct {
	cfg    *cli.Config
	logger *zap.Logger
}

// New builds an Engine ready to Run.
func New(cfg *cli.Config, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Run executes the whole pipeline and returns the process exit code
// spec.md §6 defines, plus any error that should itself set the exit
// code (ConfigError/InputError -> 2, IOError -> 1).
func (e *Engine) Run(ctx context.Context) (int, error) {
	cfg := e.cfg
	logger := e.logger

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	templateStr := cfg.Command
	shellMode := !cfg.NoShell
	if cfg.NoCommand {
		// Each input record is itself a full shell command (§6); {} then
		// references the whole line, and a shell must interpret it.
		templateStr = "{}"
		shellMode = true
	}

	var tokens []template.Token
	var words [][]template.Token
	if shellMode {
		tokens = template.Tokenize(templateStr)
	} else {
		words = template.Words(templateStr)
	}

	groups, pipeData, err := input.Collect(input.Options{
		ModeArgs:    cfg.ModeArgs,
		Stdin:       os.Stdin,
		StdinIsPipe: stdinIsPipe(),
		Pipe:        cfg.Pipe,
	})
	if err != nil {
		return 2, err
	}

	perm, err := input.NewPermutator(groups)
	if err != nil {
		return 2, err
	}

	tempdir.SweepStale(tmpBase(cfg.TmpDir), logger)

	mgr, err := tempdir.New(cfg.TmpDir, logger)
	if err != nil {
		return 1, err
	}
	defer mgr.Cleanup()

	var pipeFile string
	if pipeData != nil {
		pipeFile = mgr.PipeInputPath()
		f, err := mgr.Create(pipeFile)
		if err != nil {
			return 1, err
		}
		_, writeErr := f.Write(pipeData)
		closeErr := f.Close()
		if writeErr != nil {
			return 1, writeErr
		}
		if closeErr != nil {
			return 1, closeErr
		}
	}

	result, err := materializer.Materialize(perm, mgr)
	if err != nil {
		return 1, err
	}
	logger.Info("materialised inputs", zap.Uint64("total_jobs", result.TotalJobs), zap.Int("jobs", jobs))

	if cfg.DryRun {
		if err := dryRun(result, tokens, words, shellMode, cfg); err != nil {
			return 1, err
		}
		return 0, nil
	}

	pendingCap := int64(4 * jobs)
	if pendingCap < 1 {
		pendingCap = 1
	}
	pendingSem := semaphore.NewWeighted(pendingCap)

	jobCh := make(chan job, jobs)
	completionCh := make(chan outputRecord, pendingCap)

	admit := newAdmitter(cfg.Delay, cfg.MemFree, logger)
	sup := NewSupervisor(logger)

	dispatchCtx, haltCancel := context.WithCancel(ctx)
	defer haltCancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go sup.Watch(dispatchCtx, sigCh, haltCancel)

	g, gctx := errgroup.WithContext(dispatchCtx)

	g.Go(func() error {
		return runDispatcher(gctx, result.Path, jobCh, pendingSem, logger)
	})

	spawnCfg := spawnConfig{
		tokens:    tokens,
		words:     words,
		shellMode: shellMode,
		pipe:      cfg.Pipe,
		pipeFile:  pipeFile,
		silent:    cfg.Silent,
		quote:     cfg.Quote,
		timeout:   cfg.Timeout,
		totalJobs: result.TotalJobs,
		ungroup:   cfg.Ungroup,
	}
	for s := 1; s <= jobs; s++ {
		slot := uint32(s)
		g.Go(func() error {
			return runWorker(gctx, slot, jobCh, admit, spawnCfg, mgr, completionCh, sup, logger)
		})
	}

	mergeDone := make(chan int, 1)
	go func() {
		mergeDone <- runMerger(dispatchCtx, completionCh, cfg.Ungroup, pendingSem, mgr, cfg.HaltFailCount, haltCancel, logger)
	}()

	workerErr := g.Wait()
	close(completionCh)
	exitCode := <-mergeDone

	if sup.Signalled() {
		return 130, nil
	}
	if workerErr != nil {
		return 1, workerErr
	}
	return exitCode, nil
}

func tmpBase(configured string) string {
	if configured != "" {
		return configured
	}
	return os.TempDir()
}

// stdinIsPipe reports whether stdin is redirected rather than a
// terminal, the common Go idiom for "is this a pipe" (spec.md §4.2,
// §6: reading standard input is only attempted when it is a pipe).
func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
