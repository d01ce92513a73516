package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/mako10k/goparallel/internal/cli"
	"github.com/mako10k/goparallel/internal/engine"
	"github.com/mako10k/goparallel/internal/perr"
)

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		switch err {
		case cli.ErrShowHelp:
			cli.ShowHelp()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "parallel: %v\n", err)
			os.Exit(exitCodeOfErr(err))
		}
	}

	if cfg.NumCPUCores {
		fmt.Println(runtime.NumCPU())
		os.Exit(0)
	}

	logger := newLogger(cfg.Verbose)
	defer logger.Sync()

	code, err := engine.New(cfg, logger).Run(context.Background())
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "parallel: %v\n", err)
		if code == 0 {
			code = exitCodeOfErr(err)
		}
	}
	os.Exit(code)
}

func exitCodeOfErr(err error) int {
	var pe *perr.Error
	if errors.As(err, &pe) {
		return pe.ExitCode()
	}
	return 1
}

// newLogger builds the process-wide logger: development encoding with
// debug level under --verbose, production JSON otherwise (SPEC_FULL
// §A.1), mirroring the teacher's log.SetFlags verbose/non-verbose toggle.
func newLogger(verbose bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		logger, err = cfg.Build()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
