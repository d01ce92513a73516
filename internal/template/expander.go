package template

import (
	"strconv"
	"strings"

	"github.com/mako10k/goparallel/internal/perr"
)

// Record is one permutation's selected fields, in column order.
type Record []string

// Context carries the per-job values a Placeholder may reference besides
// the input record itself.
type Context struct {
	JobIndex  uint64
	Slot      uint32
	JobTotal  uint64
	Separator byte // platform path separator; 0 means '/'
}

// Expand renders tokens into one string for one job: the whole shell
// command in shell mode, or a single argv word when ExpandArgv calls it
// per word. It never splits on whitespace, so literal fragments stay glued
// to adjacent placeholders (e.g. "--file={}.bak"); the only spaces it adds
// are those between fields of the implicit AllFields placeholder.
func Expand(tokens []Token, rec Record, ctx Context, quote bool) (string, error) {
	sep := ctx.Separator
	if sep == 0 {
		sep = '/'
	}
	var out strings.Builder
	for _, t := range tokens {
		if !t.Placeholder {
			out.WriteString(t.Literal)
			continue
		}
		if t.Transform == AllFields {
			out.WriteString(joinFields(rec, quote))
			continue
		}
		val, err := renderPlaceholder(t, rec, ctx, sep)
		if err != nil {
			return "", err
		}
		if quote {
			val = ShellQuote(val)
		}
		out.WriteString(val)
	}
	return out.String(), nil
}

// joinFields renders every column of rec as a separate (optionally
// shell-quoted) argument joined by a single space, the implicit-template
// behaviour of appending the whole record rather than just field 1.
func joinFields(rec Record, quote bool) string {
	parts := make([]string, len(rec))
	for i, f := range rec {
		if quote {
			f = ShellQuote(f)
		}
		parts[i] = f
	}
	return strings.Join(parts, " ")
}

func renderPlaceholder(t Token, rec Record, ctx Context, sep byte) (string, error) {
	switch t.Transform {
	case Slot:
		return strconv.FormatUint(uint64(ctx.Slot), 10), nil
	case JobIndex:
		return strconv.FormatUint(ctx.JobIndex, 10), nil
	case JobTotal:
		return strconv.FormatUint(ctx.JobTotal, 10), nil
	}

	field, err := selectField(t, rec)
	if err != nil {
		return "", err
	}

	switch t.Transform {
	case Raw:
		return field, nil
	case StripExt:
		return stripExt(field, sep), nil
	case StripSuffix:
		return stripSuffix(field, t.Suffix), nil
	case Basename:
		return basename(field, sep), nil
	case Dirname:
		return dirname(field, sep), nil
	case BasenameStripExt:
		return stripExt(basename(field, sep), sep), nil
	case BasenameStripSuffix:
		return stripSuffix(basename(field, sep), t.Suffix), nil
	default:
		return field, nil
	}
}

// selectField resolves which column of the record a placeholder refers
// to, per spec.md §4.5: {N} is 1-based and out of range is a fatal
// per-job ExpansionError; {} (nth unset) means field 1, which in a
// 1-list cartesian product is the whole (single-field) line anyway.
func selectField(t Token, rec Record) (string, error) {
	n := 1
	if t.HasNth {
		n = t.Nth
	}
	if n < 1 || n > len(rec) {
		return "", perr.Expansion("missing column", missingColumn(n))
	}
	return rec[n-1], nil
}

type missingColumnErr int

func (e missingColumnErr) Error() string {
	return "no column " + strconv.Itoa(int(e)) + " in input record"
}

func missingColumn(n int) error { return missingColumnErr(n) }

func basename(s string, sep byte) string {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return s
	}
	return s[i+1:]
}

func dirname(s string, sep byte) string {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return ""
	}
	return s[:i]
}

// stripExt strips the shortest substring starting from the last '.' in
// the basename only (spec.md §4.5, §9 open question (ii)): "a.b/c" has no
// dot in its basename "c", so it is returned unchanged.
func stripExt(s string, sep byte) string {
	base := basename(s, sep)
	dir := dirname(s, sep)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return s
	}
	stripped := base[:i]
	if dir == "" {
		return stripped
	}
	return dir + string(sep) + stripped
}

func stripSuffix(s, suffix string) string {
	if suffix != "" && strings.HasSuffix(s, suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}

// ExpandArgv renders a word-split template (from Words) into an argv
// vector for the direct-exec (-n/--no-shell) path: each word becomes
// exactly one argument, so a substituted value containing spaces is
// never re-split (spec.md §4.5, §4.7 step 4).
func ExpandArgv(words [][]Token, rec Record, ctx Context, quote bool) ([]string, error) {
	argv := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) == 1 && w[0].Placeholder && w[0].Transform == AllFields {
			for _, f := range rec {
				if quote {
					f = ShellQuote(f)
				}
				argv = append(argv, f)
			}
			continue
		}
		arg, err := Expand(w, rec, ctx, quote)
		if err != nil {
			return nil, err
		}
		argv = append(argv, arg)
	}
	return argv, nil
}
