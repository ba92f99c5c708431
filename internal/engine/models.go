package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"grabtune/internal/entity"

	"github.com/lrstanley/go-ytdlp"
)

const deletedVideoTitle = "[Deleted video]"

var (
	maxJSONSize = 10 * 1024 * 1024 // 10 MiB scanner buffer
	bufSize     = 4096

	// reFilepath matches the bare file path yt-dlp prints for
	// "after_move:filepath".
	reFilepath = regexp.MustCompile(`(?i)^[^\{\[\n].*\.[a-z0-9]{1,6}$`)
)

// Result wraps ytdlp.Result for custom logging.
type Result struct {
	*ytdlp.Result
}

// LogValue implements the slog.LogValuer interface.
func (r Result) LogValue() slog.Value {
	if r.Result == nil {
		return slog.GroupValue(slog.String("error", "nil result"))
	}

	return slog.GroupValue(
		slog.String("executable", r.Executable),
		slog.String("args", fmt.Sprintf("%v", r.Args)),
		slog.String("stdout", r.Stdout),
		slog.String("stderr", r.Stderr),
	)
}

// metaJSON is the subset of yt-dlp's dump-single-json output this core
// needs for the availability decision.
type metaJSON struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Availability string  `json:"availability"`
	IsLive       bool    `json:"is_live"`
	LiveStatus   string  `json:"live_status"`
	Duration     float64 `json:"duration"`
	Uploader     string  `json:"uploader"`
	Formats      []struct {
		Acodec string `json:"acodec"`
	} `json:"formats"`
}

// ParseMetadata extracts a metadata snapshot from yt-dlp stdout. Stray
// progress lines around the JSON document are skipped.
func ParseMetadata(stdout string) (*entity.VideoMetadata, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, bufSize), maxJSONSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}

		var m metaJSON
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			continue
		}

		return composeMetadata(m), nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan engine output: %w", err)
	}

	return nil, fmt.Errorf("no metadata document in engine output")
}

func composeMetadata(m metaJSON) *entity.VideoMetadata {
	hasAudio := false
	for _, f := range m.Formats {
		if f.Acodec != "" && f.Acodec != "none" {
			hasAudio = true

			break
		}
	}

	return &entity.VideoMetadata{
		ID:           m.ID,
		Title:        m.Title,
		Availability: parseAvailability(m),
		IsLive:       m.IsLive || m.LiveStatus == "is_live",
		HasAudio:     hasAudio,
		Duration:     time.Duration(m.Duration * float64(time.Second)),
		Uploader:     m.Uploader,
	}
}

// parseAvailability folds the platform's visibility states into the
// core's availability set. Geo-blocking never appears here; it only
// surfaces as an extraction fault and is handled by classification.
func parseAvailability(m metaJSON) entity.Availability {
	if m.Title == deletedVideoTitle {
		return entity.AvailabilityRemoved
	}

	switch m.Availability {
	case "", "public":
		return entity.AvailabilityPublic
	case "unlisted":
		return entity.AvailabilityUnlisted
	case "private", "needs_auth", "premium_only", "subscriber_only":
		return entity.AvailabilityPrivate
	case "removed":
		return entity.AvailabilityRemoved
	default:
		return entity.AvailabilityPublic
	}
}

// ParseDestination returns the final file path the engine printed for
// "after_move:filepath", or empty when none was printed.
func ParseDestination(stdout string) string {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, bufSize), maxJSONSize)

	var dest string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if reFilepath.MatchString(line) {
			dest = line
		}
	}

	return dest
}
