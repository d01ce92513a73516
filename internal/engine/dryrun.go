package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mako10k/goparallel/internal/cli"
	"github.com/mako10k/goparallel/internal/materializer"
	"github.com/mako10k/goparallel/internal/perr"
	"github.com/mako10k/goparallel/internal/template"
)

// dryRun implements --dry-run (SPEC_FULL §C): expand every job's
// command and print it, one line per job in job-index order, without
// spawning anything.
func dryRun(result materializer.Result, tokens []template.Token, words [][]template.Token, shellMode bool, cfg *cli.Config) error {
	f, err := os.Open(result.Path)
	if err != nil {
		return perr.IO("cannot open unprocessed-inputs file", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var idx uint64
	for sc.Scan() {
		idx++
		rec := template.Record(materializer.SplitRecord(sc.Text()))
		tctx := template.Context{JobIndex: idx, Slot: 0, JobTotal: result.TotalJobs, Separator: byte(os.PathSeparator)}

		var line string
		var err error
		if shellMode {
			line, err = template.Expand(tokens, rec, tctx, cfg.Quote)
		} else {
			var argv []string
			argv, err = template.ExpandArgv(words, rec, tctx, cfg.Quote)
			line = strings.Join(argv, " ")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "job %d: %v\n", idx, err)
			continue
		}
		fmt.Println(line)
	}
	return sc.Err()
}
