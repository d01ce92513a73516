package template

import (
	"strconv"
	"strings"
)

// scanner walks the template byte-by-byte. Its shape — input/position/
// current plus advance/peek — mirrors the teacher's llmsh tokenizer.
type scanner struct {
	input    string
	position int
	current  byte
}

func newScanner(input string) *scanner {
	s := &scanner{input: input}
	s.setCurrent()
	return s
}

func (s *scanner) setCurrent() {
	if s.position < len(s.input) {
		s.current = s.input[s.position]
	} else {
		s.current = 0
	}
}

func (s *scanner) advance() {
	s.position++
	s.setCurrent()
}

// Words splits a command template into whitespace-separated words,
// leaving `{...}` bodies intact even if a SUFFIX operand happens to
// contain a space, then tokenizes each word independently. This is the
// argv-mode entry point (C5, direct-exec path): each word expands to
// exactly one argument, so a placeholder's substituted value is never
// re-split even if it contains spaces (the whole point of -n/--no-shell).
//
// A template beginning with a shebang line (spec.md §1's --shebang
// surface, teacher's NewTokenizer shebang handling) treats the rest of
// that first line after "#!" as a single literal word naming the
// interpreter.
func Words(tmpl string) [][]Token {
	var shebang string
	if strings.HasPrefix(tmpl, "#!") {
		if i := strings.IndexByte(tmpl, '\n'); i >= 0 {
			shebang, tmpl = tmpl[2:i], tmpl[i+1:]
		} else {
			shebang, tmpl = tmpl[2:], ""
		}
	}

	raw := splitWords(tmpl)
	words := make([][]Token, 0, len(raw)+1)
	if shebang != "" {
		words = append(words, []Token{NewLiteral(shebang)})
	}
	hasPlaceholder := false
	for _, w := range raw {
		toks := tokenizeWord(w)
		for _, t := range toks {
			if t.Placeholder {
				hasPlaceholder = true
			}
		}
		words = append(words, toks)
	}
	if !hasPlaceholder && len(tmpl) > 0 {
		words = append(words, []Token{{Placeholder: true, Transform: AllFields}})
	}
	return words
}

// splitWords breaks s on runs of space/tab, keeping `{...}` bodies whole.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{':
			depth++
			cur.WriteByte(c)
		case c == '}' && depth > 0:
			depth--
			cur.WriteByte(c)
		case depth == 0 && (c == ' ' || c == '\t'):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return words
}

// Tokenize parses a whole command template into one flat sequence of
// literal and placeholder tokens, used for shell-mode rendering (the
// template becomes a single `sh -c` string) and for the idempotent
// round-trip test (spec.md §8.4). If no placeholder token results, the
// whole record is appended after a single space, one field per argument
// (spec.md §4.1's worked scenarios S2/S8), not just field 1.
func Tokenize(tmpl string) []Token {
	tokens := tokenizeWord(tmpl)
	for _, t := range tokens {
		if t.Placeholder {
			return tokens
		}
	}
	if len(tmpl) == 0 {
		return tokens
	}
	return append(tokens, NewLiteral(" "), Token{Placeholder: true, Transform: AllFields})
}

// tokenizeWord parses placeholders out of a single word (or a whole
// template, for shell mode) with no implicit-{} handling of its own.
func tokenizeWord(word string) []Token {
	s := newScanner(word)
	var tokens []Token
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, NewLiteral(lit.String()))
			lit.Reset()
		}
	}

	for s.current != 0 {
		if s.current != '{' {
			lit.WriteByte(s.current)
			s.advance()
			continue
		}

		start := s.position
		if tok, ok := s.tryPlaceholder(); ok {
			flushLit()
			tokens = append(tokens, tok)
			continue
		}
		s.position = start
		s.setCurrent()
		lit.WriteByte(s.current)
		s.advance()
	}
	flushLit()
	return tokens
}

// tryPlaceholder attempts to parse `{ PH }` at the current `{`. Returns
// ok=false (leaving position somewhere past the `{`, which the caller
// rewinds) if the brace is unmatched or the braced body does not match
// the placeholder grammar — the caller then treats the brace as a literal.
func (s *scanner) tryPlaceholder() (Token, bool) {
	s.advance() // consume '{'
	body, ok := s.readBody()
	if !ok {
		return Token{}, false
	}
	return parsePlaceholderBody(body)
}

// readBody reads up to the next `}` (braces are not nested). Returns
// ok=false if EOF is reached first (unmatched `{`).
func (s *scanner) readBody() (string, bool) {
	var b strings.Builder
	for s.current != 0 && s.current != '}' {
		b.WriteByte(s.current)
		s.advance()
	}
	if s.current != '}' {
		return "", false
	}
	s.advance() // consume '}'
	return b.String(), true
}

// parsePlaceholderBody parses the PH grammar from spec.md §4.1:
//
//	PH := N? ( "/" "/"? | "/"? ( "." | "^" SUFFIX ) )? | "%" | "#" "#"?
//	N  := [0-9]+
func parsePlaceholderBody(body string) (Token, bool) {
	switch body {
	case "%":
		return Token{Placeholder: true, Transform: Slot}, true
	case "#":
		return Token{Placeholder: true, Transform: JobIndex}, true
	case "##":
		return Token{Placeholder: true, Transform: JobTotal}, true
	}

	i := 0
	nStart := i
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	hasNth := i > nStart
	var nth int
	if hasNth {
		n, err := strconv.Atoi(body[nStart:i])
		if err != nil {
			return Token{}, false
		}
		nth = n
	}
	rest := body[i:]

	tok := Token{Placeholder: true, Nth: nth, HasNth: hasNth}

	switch {
	case rest == "":
		tok.Transform = Raw
	case rest == ".":
		tok.Transform = StripExt
	case rest == "/":
		tok.Transform = Basename
	case rest == "//":
		// Tie-break (spec.md §4.1): the grammar commits to Dirname as
		// soon as it sees the second '/', so {N//} never reaches the
		// BasenameStripExt branch below.
		tok.Transform = Dirname
	case rest == "/.":
		tok.Transform = BasenameStripExt
	case len(rest) >= 1 && rest[0] == '^':
		tok.Transform = StripSuffix
		tok.Suffix = rest[1:]
	case len(rest) >= 2 && rest[0] == '/' && rest[1] == '^':
		tok.Transform = BasenameStripSuffix
		tok.Suffix = rest[2:]
	default:
		return Token{}, false
	}
	return tok, true
}
