// Package cli is a thin, hand-built argument scanner: spec.md §1 treats
// the "argv to configuration record" parser as an out-of-scope
// collaborator, specified only by the Config it must produce (§6). This
// package exists only to build that record, the way the teacher's own
// internal/cli stays a flat flag.FlagSet wrapper rather than a grammar.
package cli

import "time"

// Config is the configuration record spec.md §6 names. It is the sole
// contract between this package and the engine.
type Config struct {
	// Jobs is --jobs/-j: worker count. 0 means "use detected cores".
	Jobs int
	// Ungroup is --ungroup/-u: §4.8 ungrouped (pass-through) mode.
	Ungroup bool
	// NoShell is --no-shell/-n: §4.7 direct-exec, no `sh -c`.
	NoShell bool
	// Pipe is --pipe/-p: feed the input record's fields as child stdin.
	Pipe bool
	// Delay is --delay: §4.9 admission pacing.
	Delay time.Duration
	// Timeout is --timeout: §4.7 step 6 per-job wall-clock limit. 0 disables it.
	Timeout time.Duration
	// MemFree is --memfree, in bytes. 0 disables the §4.9 memory gate.
	MemFree uint64
	// Quote is -q/--quote/--shellquote: §4.5 shell-quote expanded fields.
	Quote bool
	// TmpDir is --tmpdir: §4.11 base directory for the run's tempdir.
	TmpDir string
	// Silent is -s/--silent/--quiet: drop child stdout.
	Silent bool
	// Verbose is -v/--verbose: log spawns and admission waits to stderr.
	Verbose bool
	// DryRun is --dry-run: expand and print, never spawn.
	DryRun bool
	// NumCPUCores is --num-cpu-cores: print core count and exit 0.
	NumCPUCores bool
	// KeepOrder is -k/--keep-order: documented no-op, grouped mode is
	// already the default (SPEC_FULL §C).
	KeepOrder bool
	// HaltFailCount is the N in --halt now,fail=N: stop dispatching new
	// jobs once this many have failed. 0 disables it (SPEC_FULL §C).
	HaltFailCount int

	// Command is the COMMAND template. Empty when NoCommand is true.
	Command string
	// NoCommand is true when the first positional argument was itself a
	// MODE marker: each input record is its own shell command (§6).
	NoCommand bool
	// ModeArgs is everything after COMMAND: a sequence of ::: / :::+ /
	// :::: / ::::+ markers and the tokens they introduce, handed to
	// internal/input.Collect verbatim.
	ModeArgs []string
}
