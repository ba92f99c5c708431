package entity_test

import (
	"errors"
	"testing"

	"grabtune/internal/entity"
	"grabtune/internal/errs"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		quality  string
		wantKind errs.Kind
	}{
		{name: "mp3 at 192", format: "mp3", quality: "192"},
		{name: "flac at best", format: "flac", quality: "best"},
		{name: "ogg at 64", format: "ogg", quality: "64"},
		{name: "unsupported format", format: "wma", quality: "192", wantKind: errs.KindFormat},
		{name: "empty format", format: "", quality: "192", wantKind: errs.KindFormat},
		{name: "unsupported quality", format: "mp3", quality: "1000", wantKind: errs.KindFormat},
		{name: "empty quality", format: "mp3", quality: "", wantKind: errs.KindFormat},
	}

	const url = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := entity.NewRequest(url, t.TempDir(), tc.format, tc.quality)

			if tc.wantKind != "" {
				if err == nil {
					t.Fatal("NewRequest() succeeded, want format error")
				}

				var e *errs.Error
				if !errors.As(err, &e) || e.Kind != tc.wantKind {
					t.Fatalf("got error %v, want kind %q", err, tc.wantKind)
				}

				return
			}

			if err != nil {
				t.Fatalf("NewRequest() failed: %v", err)
			}

			if req.ID == "" {
				t.Error("request ID must be assigned")
			}

			if string(req.Format) != tc.format || string(req.Quality) != tc.quality {
				t.Errorf("got %s/%s, want %s/%s", req.Format, req.Quality, tc.format, tc.quality)
			}
		})
	}
}

func TestRequestIDDeterministic(t *testing.T) {
	const url = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	a, err := entity.NewRequest(url, "/tmp/a", "mp3", "192")
	if err != nil {
		t.Fatal(err)
	}

	b, err := entity.NewRequest(url, "/tmp/b", "mp3", "192")
	if err != nil {
		t.Fatal(err)
	}

	if a.ID != b.ID {
		t.Errorf("same url/format/quality must map to the same ID: %q != %q", a.ID, b.ID)
	}
}

func TestPhaseOrdering(t *testing.T) {
	order := []entity.Phase{
		entity.PhaseValidating,
		entity.PhaseConnecting,
		entity.PhaseFetchingMetadata,
		entity.PhaseDownloading,
		entity.PhasePostprocessing,
		entity.PhaseCompleted,
	}

	for i := 1; i < len(order); i++ {
		if !order[i-1].Before(order[i]) {
			t.Errorf("%s must precede %s", order[i-1], order[i])
		}
	}

	if entity.PhaseCompleted.Before(entity.PhaseFailed) || entity.PhaseFailed.Before(entity.PhaseCompleted) {
		t.Error("terminal phases must share a rank")
	}

	if !entity.PhaseCompleted.Terminal() || !entity.PhaseFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}

	if entity.PhaseDownloading.Terminal() {
		t.Error("downloading must not be terminal")
	}
}
