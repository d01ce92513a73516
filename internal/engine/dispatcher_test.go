package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

func writeUnprocessed(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unprocessed")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, l := range lines {
		f.WriteString(l + "\n")
	}
	f.Close()
	return path
}

func TestDispatcherAssignsDenseIndices(t *testing.T) {
	path := writeUnprocessed(t, "a", "b", "c")
	jobCh := make(chan job, 3)
	pendingSem := semaphore.NewWeighted(10)

	if err := runDispatcher(context.Background(), path, jobCh, pendingSem, zap.NewNop()); err != nil {
		t.Fatalf("runDispatcher: %v", err)
	}

	var got []job
	for j := range jobCh {
		got = append(got, j)
	}
	if len(got) != 3 {
		t.Fatalf("got %d jobs, want 3", len(got))
	}
	for i, j := range got {
		if j.index != uint64(i+1) {
			t.Errorf("job[%d].index = %d, want %d", i, j.index, i+1)
		}
	}
	if got[0].line != "a" || got[1].line != "b" || got[2].line != "c" {
		t.Errorf("lines = %+v, want a,b,c", got)
	}
}

func TestDispatcherRespectsBackPressure(t *testing.T) {
	path := writeUnprocessed(t, "a", "b", "c")
	jobCh := make(chan job, 3)
	pendingSem := semaphore.NewWeighted(1)

	done := make(chan error, 1)
	go func() { done <- runDispatcher(context.Background(), path, jobCh, pendingSem, zap.NewNop()) }()

	first := <-jobCh
	if first.index != 1 {
		t.Fatalf("first job index = %d, want 1", first.index)
	}

	select {
	case <-jobCh:
		t.Fatalf("dispatcher sent a second job before the first permit was released")
	case <-time.After(50 * time.Millisecond):
	}

	pendingSem.Release(1)

	second := <-jobCh
	if second.index != 2 {
		t.Fatalf("second job index = %d, want 2", second.index)
	}
	pendingSem.Release(1)
	third := <-jobCh
	if third.index != 3 {
		t.Fatalf("third job index = %d, want 3", third.index)
	}
	pendingSem.Release(1)

	if err := <-done; err != nil {
		t.Fatalf("runDispatcher: %v", err)
	}
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	path := writeUnprocessed(t, "a", "b", "c")
	jobCh := make(chan job, 3)
	pendingSem := semaphore.NewWeighted(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runDispatcher(ctx, path, jobCh, pendingSem, zap.NewNop()); err != nil {
		t.Fatalf("runDispatcher: %v", err)
	}
	if _, ok := <-jobCh; ok {
		t.Errorf("expected jobCh to be closed with no jobs sent")
	}
}
