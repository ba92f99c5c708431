// Package entity defines the core download domain types.
package entity

import (
	"fmt"
	"log/slog"
	"time"

	"grabtune/internal/errs"
	"grabtune/pkg/gen"
)

// AudioFormat is the requested output container/codec.
type AudioFormat string

// Supported audio formats.
const (
	FormatMP3  AudioFormat = "mp3"
	FormatWAV  AudioFormat = "wav"
	FormatFLAC AudioFormat = "flac"
	FormatAAC  AudioFormat = "aac"
	FormatM4A  AudioFormat = "m4a"
	FormatOGG  AudioFormat = "ogg"
)

// AudioQuality is the requested bitrate, or "best" for the source rate.
type AudioQuality string

// Supported audio qualities.
const (
	QualityBest AudioQuality = "best"
	Quality320  AudioQuality = "320"
	Quality256  AudioQuality = "256"
	Quality192  AudioQuality = "192"
	Quality128  AudioQuality = "128"
	Quality96   AudioQuality = "96"
	Quality64   AudioQuality = "64"
)

// ParseAudioFormat validates raw against the supported format set.
// An out-of-set value is a format error at request-construction time.
func ParseAudioFormat(raw string) (AudioFormat, error) {
	switch f := AudioFormat(raw); f {
	case FormatMP3, FormatWAV, FormatFLAC, FormatAAC, FormatM4A, FormatOGG:
		return f, nil
	default:
		return "", errs.New(errs.KindFormat, fmt.Sprintf("invalid audio format %q", raw))
	}
}

// ParseAudioQuality validates raw against the supported quality set.
func ParseAudioQuality(raw string) (AudioQuality, error) {
	switch q := AudioQuality(raw); q {
	case QualityBest, Quality320, Quality256, Quality192, Quality128, Quality96, Quality64:
		return q, nil
	default:
		return "", errs.New(errs.KindFormat, fmt.Sprintf("invalid audio quality %q", raw))
	}
}

// Request describes one download. It is immutable once submitted.
type Request struct {
	ID        string
	URL       string
	OutputDir string
	Format    AudioFormat
	Quality   AudioQuality
	CreatedAt time.Time
}

// NewRequest validates the format and quality sets and assigns the
// deterministic request identifier.
func NewRequest(url, outputDir, format, quality string) (*Request, error) {
	f, err := ParseAudioFormat(format)
	if err != nil {
		return nil, err
	}

	q, err := ParseAudioQuality(quality)
	if err != nil {
		return nil, err
	}

	return &Request{
		ID:        gen.UUIDv5(url, format, quality),
		URL:       url,
		OutputDir: outputDir,
		Format:    f,
		Quality:   q,
		CreatedAt: time.Now(),
	}, nil
}

// LogValue implements slog.LogValuer for structured logging.
func (r *Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID),
		slog.String("url", r.URL),
		slog.String("output_dir", r.OutputDir),
		slog.String("format", string(r.Format)),
		slog.String("quality", string(r.Quality)),
	)
}

// Availability is the platform-reported visibility of a video.
type Availability string

// Availability states.
const (
	AvailabilityPublic     Availability = "public"
	AvailabilityPrivate    Availability = "private"
	AvailabilityUnlisted   Availability = "unlisted"
	AvailabilityGeoBlocked Availability = "geo_blocked"
	AvailabilityRemoved    Availability = "removed"
)

// VideoMetadata is a read-only snapshot produced by the extraction
// engine for a single URL, discarded after the availability decision.
type VideoMetadata struct {
	ID           string
	Title        string
	Availability Availability
	IsLive       bool
	HasAudio     bool
	Duration     time.Duration
	Uploader     string
}

// LogValue implements slog.LogValuer for structured logging.
func (m *VideoMetadata) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", m.ID),
		slog.String("title", m.Title),
		slog.String("availability", string(m.Availability)),
		slog.Bool("is_live", m.IsLive),
		slog.Bool("has_audio", m.HasAudio),
		slog.Duration("duration", m.Duration),
		slog.String("uploader", m.Uploader),
	)
}

// Phase is a named stage in the lifecycle of a download request.
// Events are ordered by phase and never regress.
type Phase string

// Lifecycle phases, in order.
const (
	PhaseValidating       Phase = "validating"
	PhaseConnecting       Phase = "connecting"
	PhaseFetchingMetadata Phase = "fetching_metadata"
	PhaseDownloading      Phase = "downloading"
	PhasePostprocessing   Phase = "postprocessing"
	PhaseCompleted        Phase = "completed"
	PhaseFailed           Phase = "failed"
)

// phaseRank orders phases. The two terminal phases share a rank; a
// request reaches exactly one of them.
var phaseRank = map[Phase]int{
	PhaseValidating:       0,
	PhaseConnecting:       1,
	PhaseFetchingMetadata: 2,
	PhaseDownloading:      3,
	PhasePostprocessing:   4,
	PhaseCompleted:        5,
	PhaseFailed:           5,
}

// Rank returns the position of the phase in the lifecycle order.
func (p Phase) Rank() int { return phaseRank[p] }

// Terminal reports whether the phase ends the event sequence.
func (p Phase) Terminal() bool { return p == PhaseCompleted || p == PhaseFailed }

// Before reports whether p precedes other in the lifecycle order.
func (p Phase) Before(other Phase) bool { return p.Rank() < other.Rank() }

// ProgressEvent is one snapshot in the append-only sequence delivered
// to the caller. Percent, BytesPerSecond and ETASeconds are absent
// (nil) when the engine has not reported them.
type ProgressEvent struct {
	Phase          Phase
	Percent        *float64
	BytesPerSecond *float64
	ETASeconds     *int64
	Err            *errs.Error
}

// LogValue implements slog.LogValuer for structured logging.
func (e ProgressEvent) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("phase", string(e.Phase))}

	if e.Percent != nil {
		attrs = append(attrs, slog.Float64("percent", *e.Percent))
	}
	if e.BytesPerSecond != nil {
		attrs = append(attrs, slog.Float64("bytes_per_second", *e.BytesPerSecond))
	}
	if e.ETASeconds != nil {
		attrs = append(attrs, slog.Int64("eta_seconds", *e.ETASeconds))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Result is returned exactly once on success, mutually exclusive with
// a failed terminal event.
type Result struct {
	FilePath string
}
