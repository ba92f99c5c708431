// Package urls validates and canonicalizes video URLs.
package urls

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical is a validated video URL with its confirmed identifier.
type Canonical struct {
	// URL is the normalized watch link for the video.
	URL string
	// VideoID is the identifier extracted from the original link.
	VideoID string
}

const watchBase = "https://www.youtube.com/watch?v="

// patterns cover the address shapes the platform serves: standard watch
// links, embed links, legacy /v/ links, short links and shorts links.
// Playlist-only URLs carry no video identifier and match none of them.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:[^#]*&)?v=([\w-]+)`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/embed/([\w-]+)`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/v/([\w-]+)`),
	regexp.MustCompile(`(?i)^(?:https?://)?youtu\.be/([\w-]+)`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([\w-]+)`),
}

// Validate checks raw against the supported address shapes and returns
// the canonical watch URL with the extracted video identifier.
// It performs no I/O and is safe for concurrent use.
func Validate(raw string) (Canonical, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Canonical{}, fmt.Errorf("url is empty")
	}

	for _, re := range patterns {
		m := re.FindStringSubmatch(raw)
		if m == nil || m[1] == "" {
			continue
		}

		return Canonical{
			URL:     watchBase + m[1],
			VideoID: m[1],
		}, nil
	}

	return Canonical{}, fmt.Errorf("unsupported video url: %q", raw)
}

// IsValid reports whether raw is a supported video URL.
func IsValid(raw string) bool {
	_, err := Validate(raw)

	return err == nil
}
