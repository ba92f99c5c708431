// Package engine defines the extraction engine boundary. Implementations
// resolve a video URL into metadata and downloadable audio; every fault
// they surface is classified exactly once before crossing this boundary.
package engine

import (
	"context"
	"time"

	"grabtune/internal/entity"
)

// Progress is one normalized snapshot pushed by an engine during a
// download.
type Progress struct {
	// Phase is downloading while bytes transfer and postprocessing
	// while the engine converts the container/codec.
	Phase          entity.Phase
	Percent        float64
	BytesPerSecond float64
	ETA            time.Duration
}

// ProgressFunc receives engine progress snapshots. It may be invoked
// from a different goroutine than the one that started the download.
type ProgressFunc func(Progress)

// Options carries the per-request download parameters.
type Options struct {
	OutputDir string
	Format    entity.AudioFormat
	Quality   entity.AudioQuality
}

// Engine is the external extraction/download collaborator.
type Engine interface {
	// Name identifies the engine implementation.
	Name() string

	// FetchMetadata resolves the URL into a metadata snapshot without
	// fetching any media bytes.
	FetchMetadata(ctx context.Context, url string) (*entity.VideoMetadata, error)

	// Download fetches the audio and converts it to the requested
	// format/quality, reporting progress through onProgress. It returns
	// the path of the finished file.
	Download(ctx context.Context, url string, opts Options, onProgress ProgressFunc) (string, error)
}
