// Package materializer implements the argument materialiser (C4): it
// drains the permutator's index tuples to a single on-disk file, one
// permutation per line, so dispatch can start without holding every
// input in memory (spec.md §4.4, §9).
package materializer

import (
	"bufio"
	"strings"

	"github.com/mako10k/goparallel/internal/input"
	"github.com/mako10k/goparallel/internal/perr"
	"github.com/mako10k/goparallel/internal/tempdir"
)

// unitSeparator joins a permutation's fields into one line (spec.md §3).
const unitSeparator = "\x1f"

// Result is what Materialize reports once every permutation has been
// written.
type Result struct {
	Path      string
	TotalJobs uint64
}

// Materialize writes every permutation produced by p to mgr's
// unprocessed-inputs file, buffered, with a single flush on completion
// (spec.md §4.4). It returns the path the dispatcher (C6) should read
// sequentially and the total job count.
func Materialize(p *input.Permutator, mgr *tempdir.Manager) (Result, error) {
	path := mgr.UnprocessedPath()
	f, err := mgr.Create(path)
	if err != nil {
		return Result{}, perr.IO("cannot create unprocessed-inputs file", err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 64*1024)
	var count uint64
	for {
		tuple, ok := p.Next()
		if !ok {
			break
		}
		rec := p.Record(tuple)
		if _, err := w.WriteString(strings.Join(rec, unitSeparator)); err != nil {
			return Result{}, perr.IO("cannot write unprocessed-inputs file", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return Result{}, perr.IO("cannot write unprocessed-inputs file", err)
		}
		count++
	}
	if err := w.Flush(); err != nil {
		return Result{}, perr.IO("cannot flush unprocessed-inputs file", err)
	}
	return Result{Path: path, TotalJobs: count}, nil
}

// SplitRecord reverses the join Materialize performed, for a worker (or
// --dry-run) to recover a job's input record from one line.
func SplitRecord(line string) []string {
	if line == "" {
		return nil
	}
	return strings.Split(line, unitSeparator)
}
