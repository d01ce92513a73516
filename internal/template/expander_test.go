package template

import "testing"

func TestExpandBasic(t *testing.T) {
	tokens := Tokenize("echo {}")
	got, err := Expand(tokens, Record{"a"}, Context{JobIndex: 1, Slot: 1, JobTotal: 3}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "echo a"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandMissingColumn(t *testing.T) {
	tokens := Tokenize("echo {2}")
	_, err := Expand(tokens, Record{"a"}, Context{}, false)
	if err == nil {
		t.Fatal("expected a missing-column error")
	}
}

func TestExpandTransforms(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		rec  Record
		want string
	}{
		{"strip ext", "{.}", Record{"a.txt"}, "a"},
		{"strip ext nested dir", "{.}", Record{"dir/b.tar.gz"}, "dir/b.tar"},
		{"basename", "{/}", Record{"/usr/local/bin/ls"}, "ls"},
		{"dirname", "{//}", Record{"/usr/local/bin/ls"}, "/usr/local/bin"},
		{"dirname no sep", "{//}", Record{"ls"}, ""},
		{"basename no sep", "{/}", Record{"ls"}, "ls"},
		{"basename strip ext no dot in basename", "{/.}", Record{"a.b/c"}, "c"},
		{"strip suffix hit", "{^.txt}", Record{"a.txt"}, "a"},
		{"strip suffix miss", "{^.txt}", Record{"a.md"}, "a.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.tmpl)
			got, err := Expand(tokens, tt.rec, Context{}, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expand(%q, %v) = %q, want %q", tt.tmpl, tt.rec, got, tt.want)
			}
		})
	}
}

func TestExpandStripExtExamples(t *testing.T) {
	// spec.md S4: parallel 'echo {.}' ::: a.txt dir/b.tar.gz -> a, dir/b.tar
	tokens := Tokenize("{.}")
	got1, err := Expand(tokens, Record{"a.txt"}, Context{}, false)
	if err != nil || got1 != "a" {
		t.Errorf("got %q, %v, want %q", got1, err, "a")
	}
	got2, err := Expand(tokens, Record{"dir/b.tar.gz"}, Context{}, false)
	if err != nil || got2 != "dir/b.tar" {
		t.Errorf("got %q, %v, want %q", got2, err, "dir/b.tar")
	}
}

func TestRoundTripNoSeparatorNoDot(t *testing.T) {
	// spec.md §8.3: for input without path separators and without dots,
	// {}, {/}, and {/.} all produce the same string.
	rec := Record{"plainname"}
	for _, tmpl := range []string{"{}", "{/}", "{/.}"} {
		tokens := Tokenize(tmpl)
		got, err := Expand(tokens, rec, Context{}, false)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tmpl, err)
		}
		if got != "plainname" {
			t.Errorf("%s: got %q, want %q", tmpl, got, "plainname")
		}
	}
}

func TestExpandSlotJobIndexTotal(t *testing.T) {
	tokens := Tokenize("{#}:{%}:{##}")
	got, err := Expand(tokens, Record{"x"}, Context{JobIndex: 3, Slot: 2, JobTotal: 4}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "3:2:4"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandQuote(t *testing.T) {
	tokens := Tokenize("{}")
	got, err := Expand(tokens, Record{"it's a file"}, Context{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `'it'\''s a file'`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandImplicitPlaceholderAppendsAllFields(t *testing.T) {
	// spec.md S2: parallel echo ::: 1 2 3 ::: A B must print "1 A", "1 B", ...
	tokens := Tokenize("echo")
	got, err := Expand(tokens, Record{"1", "A"}, Context{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "echo 1 A"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandImplicitPlaceholderZippedRecord(t *testing.T) {
	// spec.md S8: parallel echo ::: a b c :::+ 1 2 must print "a 1", "b 2".
	tokens := Tokenize("echo")
	got, err := Expand(tokens, Record{"a", "1"}, Context{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "echo a 1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandArgvImplicitPlaceholderAppendsAllFieldsAsSeparateArgs(t *testing.T) {
	words := Words("echo")
	argv, err := ExpandArgv(words, Record{"has space", "b"}, Context{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"echo", "has space", "b"}
	if len(argv) != len(want) {
		t.Fatalf("got %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestExpandArgv(t *testing.T) {
	words := Words("echo {} {2}")
	argv, err := ExpandArgv(words, Record{"has space", "b"}, Context{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"echo", "has space", "b"}
	if len(argv) != len(want) {
		t.Fatalf("got %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}
