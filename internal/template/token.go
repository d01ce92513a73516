// Package template implements the command-template tokeniser (C1) and
// expander (C5): parsing `{...}` placeholders once, then rendering them
// for each job's input record as a pure function of
// (tokens, record, job index, slot, total jobs).
package template

import "strconv"

// TransformKind is the operation a Placeholder applies to the selected
// field before it is substituted into the command.
type TransformKind int

const (
	// Raw substitutes the field unchanged: {} or {N}.
	Raw TransformKind = iota
	// StripExt strips the basename's last ".ext" (from its final '.'): {.} or {N.}.
	StripExt
	// StripSuffix strips a literal suffix if present: {^s} or {N^s}.
	StripSuffix
	// Basename keeps the path component after the last separator: {/} or {N/}.
	Basename
	// Dirname keeps the path component before the last separator: {//} or {N//}.
	Dirname
	// BasenameStripExt composes Basename then StripExt: {/.} or {N/.}.
	BasenameStripExt
	// BasenameStripSuffix composes Basename then StripSuffix: {/^s} or {N/^s}.
	BasenameStripSuffix
	// Slot substitutes the 1-based worker slot id: {%}.
	Slot
	// JobIndex substitutes the 1-based job index: {#}.
	JobIndex
	// JobTotal substitutes the total job count: {##}.
	JobTotal
	// AllFields substitutes every column of the record, space-separated,
	// as distinct arguments. Never produced by parsePlaceholderBody (no
	// `{...}` spelling reaches it); Tokenize/Words synthesize it only for
	// the implicit-placeholder case where the template has no `{...}` at
	// all (spec.md §4.1's worked scenarios S2/S8: the whole record is
	// appended, not just field 1).
	AllFields
)

// Token is one piece of a parsed command template: either literal bytes
// passed through unchanged, or a Placeholder to be rendered per job.
type Token struct {
	Literal     string
	Placeholder bool

	// Fields below are only meaningful when Placeholder is true.
	Nth       int  // 1-based column; 0 means "current input" (nil in spec.md's Option<u32>)
	HasNth    bool // whether Nth was explicitly given in {N...}
	Transform TransformKind
	Suffix    string // operand of StripSuffix / BasenameStripSuffix
}

// NewLiteral builds a literal token.
func NewLiteral(s string) Token { return Token{Literal: s} }

// canonical renders a token back to the textual form the tokeniser would
// produce from it — used to test idempotent tokenisation (spec.md §8.4).
func (t Token) canonical() string {
	if !t.Placeholder {
		return t.Literal
	}
	var n string
	if t.HasNth {
		n = strconv.Itoa(t.Nth)
	}
	switch t.Transform {
	case Raw:
		return "{" + n + "}"
	case StripExt:
		return "{" + n + ".}"
	case StripSuffix:
		return "{" + n + "^" + t.Suffix + "}"
	case Basename:
		return "{" + n + "/}"
	case Dirname:
		return "{" + n + "//}"
	case BasenameStripExt:
		return "{" + n + "/.}"
	case BasenameStripSuffix:
		return "{" + n + "/^" + t.Suffix + "}"
	case Slot:
		return "{%}"
	case JobIndex:
		return "{#}"
	case JobTotal:
		return "{##}"
	case AllFields:
		return "{}"
	default:
		return "{" + n + "}"
	}
}

// Render renders a full token stream back to its canonical textual form.
func Render(tokens []Token) string {
	var out string
	for _, t := range tokens {
		out += t.canonical()
	}
	return out
}
