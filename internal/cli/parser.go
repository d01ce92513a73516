package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mako10k/goparallel/internal/input"
	"github.com/mako10k/goparallel/internal/perr"
	"github.com/mako10k/goparallel/internal/sysmem"
)

// ErrShowHelp is returned by ParseArgs when -h/--help was given.
var ErrShowHelp = errors.New("show help")

// ParseArgs parses os.Args[1:]-shaped input into a Config. It relies on
// the standard library flag package exactly as the teacher's own parser
// does (flag.NewFlagSet + fs.Parse); flag.Parse stops at the first
// non-flag argument, which is exactly the COMMAND token (or, with no
// COMMAND, the first MODE marker per §6) — everything after that is
// handed to internal/input untouched, the same "stop at the boundary,
// scan the rest by hand" shape as the teacher's
// utils.ParseLineCountArgument.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	var memfree, delay, halt string
	var showHelp bool

	fs := flag.NewFlagSet("parallel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { ShowHelp() }

	fs.IntVar(&cfg.Jobs, "j", 0, "worker count (0 = detected cores)")
	fs.IntVar(&cfg.Jobs, "jobs", 0, "worker count (0 = detected cores)")

	fs.BoolVar(&cfg.Ungroup, "u", false, "ungrouped (pass-through) output")
	fs.BoolVar(&cfg.Ungroup, "ungroup", false, "ungrouped (pass-through) output")

	fs.BoolVar(&cfg.NoShell, "n", false, "direct exec, no shell wrapping")
	fs.BoolVar(&cfg.NoShell, "no-shell", false, "direct exec, no shell wrapping")

	fs.BoolVar(&cfg.Pipe, "p", false, "feed input record fields as child stdin")
	fs.BoolVar(&cfg.Pipe, "pipe", false, "feed input record fields as child stdin")

	fs.StringVar(&delay, "delay", "", "admission pacing, seconds (e.g. 0.5 or 500ms)")

	fs.DurationVar(&cfg.Timeout, "timeout", 0, "per-job wall-clock limit (e.g. 30s)")

	fs.StringVar(&memfree, "memfree", "", "minimum free memory before spawn (K/M/G suffix)")

	fs.BoolVar(&cfg.Quote, "q", false, "shell-quote expanded fields")
	fs.BoolVar(&cfg.Quote, "quote", false, "shell-quote expanded fields")
	fs.BoolVar(&cfg.Quote, "shellquote", false, "shell-quote expanded fields")

	fs.StringVar(&cfg.TmpDir, "tmpdir", "", "base directory for the run's tempdir (default OS temp)")

	fs.BoolVar(&cfg.Silent, "s", false, "drop child stdout")
	fs.BoolVar(&cfg.Silent, "silent", false, "drop child stdout")
	fs.BoolVar(&cfg.Silent, "quiet", false, "drop child stdout")

	fs.BoolVar(&cfg.Verbose, "v", false, "log spawns and admission waits to stderr")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log spawns and admission waits to stderr")

	fs.BoolVar(&cfg.DryRun, "dry-run", false, "expand and print, do not spawn")
	fs.BoolVar(&cfg.NumCPUCores, "num-cpu-cores", false, "print detected core count and exit")

	fs.BoolVar(&cfg.KeepOrder, "k", false, "no-op: grouped mode is already the default")
	fs.BoolVar(&cfg.KeepOrder, "keep-order", false, "no-op: grouped mode is already the default")

	fs.StringVar(&halt, "halt", "", "e.g. now,fail=3: stop dispatching after 3 failed jobs")

	fs.BoolVar(&showHelp, "h", false, "show this help message")
	fs.BoolVar(&showHelp, "help", false, "show this help message")

	if err := fs.Parse(args); err != nil {
		return nil, perr.Config("invalid option", err)
	}
	if showHelp {
		return nil, ErrShowHelp
	}

	if delay != "" {
		d, err := parseSecondsOrDuration(delay)
		if err != nil {
			return nil, perr.Config("invalid --delay", err)
		}
		cfg.Delay = d
	}
	if memfree != "" {
		m, err := sysmem.ParseBytes(memfree)
		if err != nil {
			return nil, perr.Config("invalid --memfree", err)
		}
		cfg.MemFree = m
	}
	if halt != "" {
		n, err := parseHalt(halt)
		if err != nil {
			return nil, perr.Config("invalid --halt", err)
		}
		cfg.HaltFailCount = n
	}

	remaining := fs.Args()
	if cfg.NumCPUCores {
		return &cfg, nil
	}
	if len(remaining) == 0 {
		return nil, perr.Config("no COMMAND or MODE given", nil)
	}

	if input.IsMode(remaining[0]) {
		cfg.NoCommand = true
		cfg.ModeArgs = remaining
	} else {
		cfg.Command = remaining[0]
		cfg.ModeArgs = remaining[1:]
	}

	if len(cfg.ModeArgs) == 0 {
		// No mode markers at all: single implicit cartesian list read from stdin.
	} else if !input.IsMode(cfg.ModeArgs[0]) {
		return nil, perr.Config("expected a ::: / :::+ / :::: / ::::+ mode marker after COMMAND", nil)
	}

	return &cfg, nil
}

// parseSecondsOrDuration accepts GNU-parallel-style bare (possibly
// fractional) seconds as well as Go duration syntax, since --delay's
// users expect "0.5" to mean 500ms.
func parseSecondsOrDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// parseHalt parses the SPEC_FULL §C "now,fail=N" grammar. Only the
// "now,fail=N" form is recognised; anything else is a ConfigError.
func parseHalt(s string) (int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 || parts[0] != "now" || !strings.HasPrefix(parts[1], "fail=") {
		return 0, fmt.Errorf(`expected "now,fail=N", got %q`, s)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(parts[1], "fail="))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid fail count in %q", s)
	}
	return n, nil
}

// ShowHelp prints usage information to stdout.
func ShowHelp() {
	fmt.Print(`parallel - CPU load balancer for shell commands

USAGE:
    parallel [OPTIONS] COMMAND [MODE ARGS]...
    parallel [OPTIONS] MODE ARGS...

    MODE is one of ::: / :::+ / :::: / ::::+, introducing a literal
    argument list or a file of newline-separated arguments respectively;
    the + variants zip elementwise into the preceding list instead of
    starting a new cartesian factor. With no COMMAND, each input record
    is itself a complete shell command.

OPTIONS:
    -j, --jobs N            worker count (0 = detected cores)
    -u, --ungroup           ungrouped (pass-through) output
    -n, --no-shell          direct exec, no shell wrapping
    -p, --pipe              feed input record fields as child stdin
    --delay D               admission pacing, seconds
    --timeout T             per-job wall-clock limit
    --memfree M             minimum free memory before spawn (K/M/G)
    -q, --quote             shell-quote expanded fields
    --tmpdir PATH           base directory for the run's tempdir
    -s, --silent, --quiet   drop child stdout
    -v, --verbose           log spawns and admission waits to stderr
    --dry-run               expand and print, do not spawn
    --num-cpu-cores         print detected core count and exit
    -k, --keep-order        no-op (grouped mode is the default)
    --halt now,fail=N       stop dispatching after N failed jobs
    -h, --help              show this help message

EXAMPLES:
    parallel 'echo {}' ::: a b c
    parallel echo ::: 1 2 3 ::: A B
    parallel -j 4 'wget {}' ::: url1 url2 url3 url4
    seq 1 3 | parallel --pipe cat
`)
}
