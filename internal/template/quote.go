package template

import "strings"

// ShellQuote wraps s in single quotes, backslash-escaping any embedded
// single quote, per spec.md §4.5's -q/--quote/--shellquote rule. This is
// the POSIX-shell single-quote-preserving form: ' -> '\''.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}
