package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"grabtune/internal/consts"
	"grabtune/internal/entity"
	"grabtune/internal/errs"
)

// Mock is a simulating engine for development and tests. It fabricates
// metadata and produces a synthetic download that ticks through
// progress without touching the network.
type Mock struct {
	log *slog.Logger

	// SimulateTime is how long the fake download takes end to end.
	SimulateTime time.Duration
}

// NewMock creates the simulating engine.
func NewMock(log *slog.Logger) *Mock {
	return &Mock{
		log:          log.With(slog.String("package", "engine"), slog.String("engine", consts.EngineMock)),
		SimulateTime: consts.DefaultSimulateTime,
	}
}

// Name identifies the engine implementation.
func (e *Mock) Name() string { return consts.EngineMock }

// FetchMetadata fabricates a public, audio-bearing video.
func (e *Mock) FetchMetadata(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Classify(err)
	}

	e.log.DebugContext(ctx, "simulating metadata fetch", slog.String("url", url))

	return &entity.VideoMetadata{
		ID:           "simulated",
		Title:        "Simulated Audio",
		Availability: entity.AvailabilityPublic,
		IsLive:       false,
		HasAudio:     true,
		Duration:     3 * time.Minute,
		Uploader:     "simulator",
	}, nil
}

// Download ticks through a fake download and returns a fabricated
// destination path. No file is written.
func (e *Mock) Download(ctx context.Context, url string, opts Options, onProgress ProgressFunc) (string, error) {
	e.log.DebugContext(ctx, "simulating download", slog.String("url", url))

	const steps = 10

	ticker := time.NewTicker(e.SimulateTime / steps)
	defer ticker.Stop()

	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			return "", errs.Classify(ctx.Err())
		case <-ticker.C:
		}

		if onProgress == nil {
			continue
		}

		phase := entity.PhaseDownloading
		if step == steps {
			phase = entity.PhasePostprocessing
		}

		onProgress(Progress{
			Phase:          phase,
			Percent:        float64(step) / steps * 100,
			BytesPerSecond: 1 << 20,
			ETA:            time.Duration(steps-step) * (e.SimulateTime / steps),
		})
	}

	return filepath.Join(opts.OutputDir, fmt.Sprintf("Simulated Audio.%s", opts.Format)), nil
}
