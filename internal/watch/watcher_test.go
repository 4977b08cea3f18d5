package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcherDeliversDebouncedBatches(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "1", "4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := New(root,
		WithDebounce(50*time.Millisecond),
		WithFilter(func(rel string) bool { return strings.HasSuffix(rel, "index.md") }),
	)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changes []Change) error {
			batches <- changes
			return nil
		})
	}()

	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)

	page := filepath.Join(root, "1", "4", "index.md")
	if err := os.WriteFile(page, []byte("---\ntitle: a\n---\n"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "1", "4", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	if err := os.WriteFile(page, []byte("---\ntitle: b\n---\n"), 0o644); err != nil {
		t.Fatalf("rewrite page: %v", err)
	}

	select {
	case batch := <-batches:
		if len(batch) != 1 {
			t.Fatalf("expected one filtered change, got %+v", batch)
		}
		if batch[0].Path != "1/4/index.md" || batch[0].Op != OpCreated {
			t.Fatalf("unexpected change %+v", batch[0])
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for a batch")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestWatcherQueuesPagesInsideNewDirectories(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	section := filepath.Join(staging, "2")
	if err := os.MkdirAll(filepath.Join(section, "1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{filepath.Join("1", "index.md"), "_index.md", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(section, name), []byte("---\ntitle: a\n---\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	w, err := New(root,
		WithDebounce(50*time.Millisecond),
		WithFilter(func(rel string) bool { return strings.HasSuffix(rel, ".md") }),
	)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changes []Change) error {
			batches <- changes
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// A moved-in directory arrives with its files already present.
	if err := os.Rename(section, filepath.Join(root, "2")); err != nil {
		t.Fatalf("move section: %v", err)
	}

	want := map[string]bool{"2/1/index.md": true, "2/_index.md": true}
	for len(want) > 0 {
		select {
		case batch := <-batches:
			for _, change := range batch {
				if change.Op != OpCreated {
					t.Fatalf("expected created, got %+v", change)
				}
				if change.Path == "2/notes.txt" {
					t.Fatalf("filtered file reported: %+v", change)
				}
				delete(want, change.Path)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %v", want)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestNewRejectsMissingRoot(t *testing.T) {
	if _, err := New(""); err != ErrRootRequired {
		t.Fatalf("expected ErrRootRequired, got %v", err)
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestMergeKeepsCreated(t *testing.T) {
	if got := merge(OpCreated, OpModified); got != OpCreated {
		t.Fatalf("expected created, got %s", got)
	}
	if got := merge(OpModified, OpRemoved); got != OpRemoved {
		t.Fatalf("expected removed, got %s", got)
	}
	if got := merge("", OpModified); got != OpModified {
		t.Fatalf("expected modified, got %s", got)
	}
}
