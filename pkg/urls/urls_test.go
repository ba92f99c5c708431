package urls_test

import (
	"testing"

	"grabtune/pkg/urls"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantID  string
		wantErr bool
	}{
		{
			name:   "standard watch link",
			raw:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "watch link without scheme",
			raw:    "www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "watch link with extra query params",
			raw:    "https://www.youtube.com/watch?t=10&v=dQw4w9WgXcQ&list=PL123",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "mobile watch link",
			raw:    "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "short link",
			raw:    "https://youtu.be/dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "embed link",
			raw:    "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "legacy v link",
			raw:    "http://youtube.com/v/dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:   "shorts link",
			raw:    "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			wantID: "dQw4w9WgXcQ",
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "not a url at all",
			raw:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "foreign domain",
			raw:     "https://vimeo.com/123456",
			wantErr: true,
		},
		{
			name:    "lookalike domain",
			raw:     "https://nottheyoutube.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "watch link without id",
			raw:     "https://www.youtube.com/watch?v=",
			wantErr: true,
		},
		{
			name:    "playlist-only url",
			raw:     "https://www.youtube.com/playlist?list=PL123",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := urls.Validate(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Validate(%q) succeeded, want error", tc.raw)
				}

				return
			}

			if err != nil {
				t.Fatalf("Validate(%q) failed: %v", tc.raw, err)
			}

			if got.VideoID != tc.wantID {
				t.Errorf("got VideoID = %q, want %q", got.VideoID, tc.wantID)
			}

			wantURL := "https://www.youtube.com/watch?v=" + tc.wantID
			if got.URL != wantURL {
				t.Errorf("got URL = %q, want %q", got.URL, wantURL)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !urls.IsValid("https://youtu.be/abc123XYZ_-") {
		t.Error("expected short link to be valid")
	}

	if urls.IsValid("ftp://youtube.com/watch?v=abc") {
		t.Error("expected non-http scheme to be invalid")
	}
}
