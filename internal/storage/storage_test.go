package storage_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"grabtune/internal/errs"
	"grabtune/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestEnsureDir(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()

		if err := storage.EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() failed: %v", err)
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")

		if err := storage.EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() failed: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory was not created: %v", err)
		}
	})

	t.Run("idempotent on same directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")

		if err := storage.EnsureDir(dir); err != nil {
			t.Fatalf("first EnsureDir() failed: %v", err)
		}

		if err := storage.EnsureDir(dir); err != nil {
			t.Fatalf("second EnsureDir() failed: %v", err)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		err := storage.EnsureDir(file)
		if err == nil {
			t.Fatal("EnsureDir() succeeded on a file path")
		}

		if kind := errs.KindOf(err); kind != errs.KindPermission {
			t.Errorf("got kind %q, want %q", kind, errs.KindPermission)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		err := storage.EnsureDir("")
		if err == nil {
			t.Fatal("EnsureDir() succeeded on empty path")
		}

		if kind := errs.KindOf(err); kind != errs.KindPermission {
			t.Errorf("got kind %q, want %q", kind, errs.KindPermission)
		}
	})

	t.Run("read-only parent", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks are bypassed for root")
		}

		parent := t.TempDir()
		if err := os.Chmod(parent, 0o555); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Chmod(parent, 0o755) })

		err := storage.EnsureDir(filepath.Join(parent, "out"))
		if err == nil {
			t.Fatal("EnsureDir() succeeded under read-only parent")
		}

		if kind := errs.KindOf(err); kind != errs.KindPermission {
			t.Errorf("got kind %q, want %q", kind, errs.KindPermission)
		}
	})
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "old-song.mp3.part")
	fresh := filepath.Join(dir, "in-flight.mp3.part")
	complete := filepath.Join(dir, "done.mp3")

	for _, path := range []string{stale, fresh, complete} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	cleaner := storage.NewCleaner(testLogger(), dir, 24*time.Hour, nil)

	removed, err := cleaner.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}

	if removed != 1 {
		t.Errorf("got %d removed, want 1", removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale partial must be removed")
	}

	for _, path := range []string{fresh, complete} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s must survive the sweep: %v", filepath.Base(path), err)
		}
	}
}

func TestSweepMissingDir(t *testing.T) {
	cleaner := storage.NewCleaner(testLogger(), filepath.Join(t.TempDir(), "gone"), time.Hour, nil)

	removed, err := cleaner.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}

	if removed != 0 {
		t.Errorf("got %d removed, want 0", removed)
	}
}
