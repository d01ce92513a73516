package cli

import (
	"testing"
	"time"
)

func TestParseArgsBasic(t *testing.T) {
	cfg, err := ParseArgs([]string{"echo {}", ":::", "a", "b", "c"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Command != "echo {}" {
		t.Errorf("Command = %q, want %q", cfg.Command, "echo {}")
	}
	if cfg.NoCommand {
		t.Errorf("NoCommand = true, want false")
	}
	want := []string{":::", "a", "b", "c"}
	if len(cfg.ModeArgs) != len(want) {
		t.Fatalf("ModeArgs = %v, want %v", cfg.ModeArgs, want)
	}
	for i := range want {
		if cfg.ModeArgs[i] != want[i] {
			t.Errorf("ModeArgs[%d] = %q, want %q", i, cfg.ModeArgs[i], want[i])
		}
	}
}

func TestParseArgsNoCommand(t *testing.T) {
	cfg, err := ParseArgs([]string{":::", "echo a", "echo b"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !cfg.NoCommand {
		t.Errorf("NoCommand = false, want true")
	}
	if cfg.Command != "" {
		t.Errorf("Command = %q, want empty", cfg.Command)
	}
}

func TestParseArgsOptions(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-j", "4", "--delay", "0.5", "--memfree", "512M", "--timeout", "2s",
		"-u", "-n", "-q", "echo {}", ":::", "x",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", cfg.Jobs)
	}
	if cfg.Delay != 500*time.Millisecond {
		t.Errorf("Delay = %v, want 500ms", cfg.Delay)
	}
	if cfg.MemFree != 512*1024*1024 {
		t.Errorf("MemFree = %d, want 512M", cfg.MemFree)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
	if !cfg.Ungroup || !cfg.NoShell || !cfg.Quote {
		t.Errorf("boolean flags not all set: %+v", cfg)
	}
}

func TestParseArgsHalt(t *testing.T) {
	cfg, err := ParseArgs([]string{"--halt", "now,fail=3", "echo {}", ":::", "x"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.HaltFailCount != 3 {
		t.Errorf("HaltFailCount = %d, want 3", cfg.HaltFailCount)
	}

	if _, err := ParseArgs([]string{"--halt", "bogus", "echo {}", ":::", "x"}); err == nil {
		t.Errorf("expected error for malformed --halt")
	}
}

func TestParseArgsNumCPUCores(t *testing.T) {
	cfg, err := ParseArgs([]string{"--num-cpu-cores"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !cfg.NumCPUCores {
		t.Errorf("NumCPUCores = false, want true")
	}
}

func TestParseArgsMissingCommand(t *testing.T) {
	if _, err := ParseArgs([]string{"-j", "2"}); err == nil {
		t.Errorf("expected error for missing COMMAND/MODE")
	}
}

func TestParseArgsShowHelp(t *testing.T) {
	if _, err := ParseArgs([]string{"--help"}); err != ErrShowHelp {
		t.Errorf("err = %v, want ErrShowHelp", err)
	}
}
