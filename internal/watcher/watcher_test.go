package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collect waits up to timeout for pred to become true.
func waitFor(t *testing.T, timeout time.Duration, pred func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if pred() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return pred()
}

func TestWatcher_IngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var ingested []string
	w := New([]string{dir}, []string{".txt"}, true,
		func(path string) {
			mu.Lock()
			ingested = append(ingested, path)
			mu.Unlock()
		}, nil,
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ingested) > 0
	})
	if !ok {
		t.Fatal("file write was not picked up")
	}
	mu.Lock()
	got := ingested[0]
	mu.Unlock()
	if got != path {
		t.Errorf("ingested %q, want %q", got, path)
	}
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	var ingested []string
	w := New([]string{dir}, []string{".md"}, true,
		func(path string) {
			mu.Lock()
			ingested = append(ingested, path)
			mu.Unlock()
		}, nil,
		WithDebounce(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "take.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ingested) > 0
	})
	mu.Lock()
	defer mu.Unlock()
	for _, p := range ingested {
		if filepath.Ext(p) != ".md" {
			t.Errorf("non-matching extension ingested: %q", p)
		}
	}
}

func TestWatcher_RemoveCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	var removed []string
	w := New([]string{dir}, []string{".txt"}, true, nil,
		func(p string) {
			mu.Lock()
			removed = append(removed, p)
			mu.Unlock()
		},
		WithDebounce(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(removed) > 0
	})
	if !ok {
		t.Fatal("file removal was not picked up")
	}
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New([]string{dir}, nil, false, nil, nil)
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start should be a no-op, got %v", err)
	}
	w.Stop()
}
