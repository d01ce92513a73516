package template

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want []Token
	}{
		{
			name: "raw current input",
			tmpl: "echo {}",
			want: []Token{NewLiteral("echo "), {Placeholder: true, Transform: Raw}},
		},
		{
			name: "numbered column",
			tmpl: "echo {2}",
			want: []Token{NewLiteral("echo "), {Placeholder: true, Nth: 2, HasNth: true, Transform: Raw}},
		},
		{
			name: "strip extension",
			tmpl: "{.}",
			want: []Token{{Placeholder: true, Transform: StripExt}},
		},
		{
			name: "basename",
			tmpl: "{/}",
			want: []Token{{Placeholder: true, Transform: Basename}},
		},
		{
			name: "dirname shadows basename-strip-ext",
			tmpl: "{//}",
			want: []Token{{Placeholder: true, Transform: Dirname}},
		},
		{
			name: "basename strip ext",
			tmpl: "{/.}",
			want: []Token{{Placeholder: true, Transform: BasenameStripExt}},
		},
		{
			name: "strip suffix",
			tmpl: "{^.txt}",
			want: []Token{{Placeholder: true, Transform: StripSuffix, Suffix: ".txt"}},
		},
		{
			name: "numbered basename strip suffix",
			tmpl: "{3/^.gz}",
			want: []Token{{Placeholder: true, Nth: 3, HasNth: true, Transform: BasenameStripSuffix, Suffix: ".gz"}},
		},
		{
			name: "slot job index total",
			tmpl: "{#}:{%}:{##}",
			want: []Token{
				{Placeholder: true, Transform: JobIndex},
				NewLiteral(":"),
				{Placeholder: true, Transform: Slot},
				NewLiteral(":"),
				{Placeholder: true, Transform: JobTotal},
			},
		},
		{
			name: "unmatched brace is literal",
			tmpl: "echo {oops",
			want: []Token{NewLiteral("echo {oops"), NewLiteral(" "), {Placeholder: true, Transform: AllFields}},
		},
		{
			name: "unrecognised body is literal",
			tmpl: "{nonsense}",
			want: []Token{NewLiteral("{nonsense}"), NewLiteral(" "), {Placeholder: true, Transform: AllFields}},
		},
		{
			name: "no placeholder gets implicit all-fields append",
			tmpl: "echo hello",
			want: []Token{NewLiteral("echo hello"), NewLiteral(" "), {Placeholder: true, Transform: AllFields}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.tmpl)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	// Re-rendering a tokenized template back to text and re-tokenizing
	// it must be a fixed point (spec.md §8.4), for templates that
	// already contain a placeholder (templates without one gain an
	// implicit {} on the first pass and are stable from the second).
	templates := []string{
		"echo {}",
		"echo {2}",
		"{.}",
		"{/}",
		"{//}",
		"{/.}",
		"{^.txt}",
		"{3/^.gz}",
		"{#}:{%}:{##}",
	}
	for _, tmpl := range templates {
		first := Tokenize(tmpl)
		rendered := Render(first)
		second := Tokenize(rendered)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not a fixed point for %q: first=%#v rendered=%q second=%#v", tmpl, first, rendered, second)
		}
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want [][]Token
	}{
		{
			name: "two words one placeholder",
			tmpl: "echo {}",
			want: [][]Token{
				{NewLiteral("echo")},
				{{Placeholder: true, Transform: Raw}},
			},
		},
		{
			name: "no placeholder gets implicit trailing word",
			tmpl: "echo hello",
			want: [][]Token{
				{NewLiteral("echo")},
				{NewLiteral("hello")},
				{{Placeholder: true, Transform: AllFields}},
			},
		},
		{
			name: "glued literal and placeholder stay one word",
			tmpl: "--file={}.bak",
			want: [][]Token{
				{NewLiteral("--file="), {Placeholder: true, Transform: Raw}, NewLiteral(".bak")},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.tmpl)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Words(%q) = %#v, want %#v", tt.tmpl, got, tt.want)
			}
		})
	}
}
