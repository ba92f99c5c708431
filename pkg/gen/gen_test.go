package gen

import "testing"

func TestUUIDv5(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		wantSame bool
	}{
		{
			name:     "same parts produce same id",
			a:        []string{"https://www.youtube.com/watch?v=abc", "mp3", "192"},
			b:        []string{"https://www.youtube.com/watch?v=abc", "mp3", "192"},
			wantSame: true,
		},
		{
			name:     "different quality produces different id",
			a:        []string{"https://www.youtube.com/watch?v=abc", "mp3", "192"},
			b:        []string{"https://www.youtube.com/watch?v=abc", "mp3", "320"},
			wantSame: false,
		},
		{
			name:     "different url produces different id",
			a:        []string{"https://www.youtube.com/watch?v=abc", "mp3", "192"},
			b:        []string{"https://www.youtube.com/watch?v=xyz", "mp3", "192"},
			wantSame: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idA := UUIDv5(tc.a...)
			idB := UUIDv5(tc.b...)

			if (idA == idB) != tc.wantSame {
				t.Errorf("UUIDv5(%v) = %q, UUIDv5(%v) = %q, wantSame=%v",
					tc.a, idA, tc.b, idB, tc.wantSame)
			}
		})
	}
}

func TestKey(t *testing.T) {
	got := Key("a", "b", "c")
	want := "a|b|c"

	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}
