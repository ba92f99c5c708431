package calc

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name              string
		downloaded, total int64
		want              float64
	}{
		{"total_zero", 10, 0, 0},
		{"zero_downloaded", 0, 100, 0},
		{"half", 50, 100, 50},
		{"exact_100", 100, 100, 100},
		{"over_100_clamped", 150, 100, 100},
		{"negative_clamped", -50, 100, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Percent(tc.downloaded, tc.total)
			if got != tc.want {
				t.Fatalf("Percent(%d, %d) = %v; want %v", tc.downloaded, tc.total, got, tc.want)
			}
		})
	}
}

func TestSpeedBPS(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)

	got := SpeedBPS(1000, started)
	if got < 400 || got > 600 {
		t.Fatalf("SpeedBPS(1000, -2s) = %v; want about 500", got)
	}

	if got := SpeedBPS(0, started); got != 0 {
		t.Fatalf("SpeedBPS(0, -2s) = %v; want 0", got)
	}
}

func approxEqual(a, b, tol time.Duration) bool {
	if a < b {
		return b-a <= tol
	}

	return a-b <= tol
}

func TestETA(t *testing.T) {
	tests := []struct {
		name              string
		downloaded, total int64
		elapsed           time.Duration
	}{
		{"total_zero", 10, 0, 1 * time.Second},
		{"half", 50, 100, 2 * time.Second},
		{"quarter", 25, 100, 4 * time.Second},
		{"finished", 100, 100, 2 * time.Second},
	}

	const tolerance = 50 * time.Millisecond

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			started := time.Now().Add(-tc.elapsed)

			got := ETA(tc.downloaded, tc.total, started)

			if tc.total == 0 {
				if got != 0 {
					t.Fatalf("expected 0 when total==0, got %v", got)
				}

				return
			}

			expected := time.Duration(float64(tc.elapsed) * (float64(tc.total)/float64(tc.downloaded) - 1))
			if expected < 0 {
				expected = 0
			}

			if !approxEqual(got, expected, tolerance) {
				t.Fatalf("ETA(%d, %d, -%v) = %v; want approx %v",
					tc.downloaded, tc.total, tc.elapsed, got, expected)
			}
		})
	}
}
