package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// partSuffixes are the extensions the extraction engine leaves behind
// when a transfer is interrupted.
var partSuffixes = []string{".part", ".ytdl", ".temp"}

// Start runs the cleanup sweep on the given interval until ctx is done.
func (c *Cleaner) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := c.log.With(slog.String("action", "cleanup_stale_parts"), slog.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			removed, err := c.Sweep(ctx)
			if err != nil {
				log.ErrorContext(ctx, "sweep failed", slog.Any("error", err))

				continue
			}

			if removed > 0 {
				log.InfoContext(ctx, "removed stale partial files", slog.Int("count", removed))
			}
		case <-ctx.Done():
			log.Info("cleanup stopped")

			return
		}
	}
}

// Sweep removes partial files older than the TTL and reports how many
// were deleted. Files newer than the TTL may belong to an in-flight
// download and are left alone.
func (c *Cleaner) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, err
	}

	cutoff := time.Now().Add(-c.partTTL)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !isPartial(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.log.ErrorContext(ctx, "failed to delete partial file",
				slog.String("path", path), slog.Any("error", err))

			continue
		}

		removed++

		c.log.DebugContext(ctx, "deleted stale partial file", slog.String("path", path))
	}

	if c.metrics != nil && removed > 0 {
		c.metrics.RecordCleanup(removed)
	}

	return removed, nil
}

func isPartial(name string) bool {
	for _, suffix := range partSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}
