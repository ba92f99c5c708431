// Package calc provides progress arithmetic for downloads.
package calc

import (
	"time"
)

// Percent calculates the completed percentage for a byte pair.
// It returns 0 when the total is unknown and clamps the result to [0, 100].
func Percent(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}

	pct := float64(downloaded) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}

	return pct
}

// SpeedBPS calculates the average transfer rate in bytes per second
// since started. It returns 0 when nothing elapsed yet.
func SpeedBPS(downloaded int64, started time.Time) float64 {
	elapsed := time.Since(started).Seconds()
	if elapsed <= 0 || downloaded <= 0 {
		return 0
	}

	return float64(downloaded) / elapsed
}

// ETA calculates the estimated time remaining from the observed rate.
// It returns 0 when the total or the progress so far is unknown.
func ETA(downloaded, total int64, started time.Time) time.Duration {
	if total <= 0 || downloaded <= 0 {
		return 0
	}

	elapsed := time.Since(started)
	eta := time.Duration(float64(elapsed) * (float64(total)/float64(downloaded) - 1))
	if eta < 0 {
		return 0
	}

	return eta
}
