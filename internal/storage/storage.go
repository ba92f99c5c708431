// Package storage validates the download output location and keeps it
// free of stale partial files.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"grabtune/internal/errs"
	"grabtune/internal/observability"
)

const dirPerm = 0o775

func newPermissionError(message string, cause error) *errs.Error {
	if cause != nil {
		return errs.Wrap(errs.KindPermission, message, cause)
	}

	return errs.New(errs.KindPermission, message)
}

// EnsureDir validates that dir exists and is writable, creating it if
// absent. It is idempotent: validating an already-valid directory
// succeeds again with no side effect. Every failure carries the
// underlying OS reason and classifies as a permission fault.
func EnsureDir(dir string) error {
	if dir == "" {
		return newPermissionError("output directory is empty", nil)
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return newPermissionError(fmt.Sprintf("output path %q is a file, not a directory", dir), nil)
	case err != nil && !os.IsNotExist(err):
		return newPermissionError(fmt.Sprintf("stat %q", dir), err)
	case err != nil:
		if mkErr := os.MkdirAll(dir, dirPerm); mkErr != nil {
			return newPermissionError(fmt.Sprintf("cannot create directory %q", dir), mkErr)
		}
	}

	// Write probe: creating a file is the only reliable writability
	// check across filesystems.
	probe, err := os.CreateTemp(dir, ".writecheck-*")
	if err != nil {
		return newPermissionError(fmt.Sprintf("no write permission for directory %q", dir), err)
	}

	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return nil
}

// Cleaner sweeps orphaned partial files out of the downloads directory.
// The orchestrator makes no cleanup guarantee during a run; this is
// offline housekeeping between runs.
type Cleaner struct {
	log     *slog.Logger
	dir     string
	partTTL time.Duration
	metrics *observability.Metrics
}

// NewCleaner creates a Cleaner for dir. Partials older than partTTL are
// removed by each sweep.
func NewCleaner(log *slog.Logger, dir string, partTTL time.Duration, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		log:     log.With(slog.String("package", "storage")),
		dir:     dir,
		partTTL: partTTL,
		metrics: metrics,
	}
}
