// Package fetcher orchestrates a download request end to end: URL
// validation, output directory checks, the reachability probe, the
// availability decision and the engine download with bounded retries.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"grabtune/internal/config"
	"grabtune/internal/consts"
	"grabtune/internal/engine"
	"grabtune/internal/entity"
	"grabtune/internal/errs"
	"grabtune/internal/observability"
	"grabtune/internal/storage"
	"grabtune/pkg/ptr"
	"grabtune/pkg/urls"
)

// Prober answers whether the video platform is reachable right now.
type Prober interface {
	Probe(ctx context.Context) error
}

// EventFunc receives progress events. Calls are serialized; events
// never regress in phase and end with exactly one terminal event.
type EventFunc func(entity.ProgressEvent)

// Fetcher runs download requests against an extraction engine.
type Fetcher struct {
	log     *slog.Logger
	cfg     *config.Config
	engine  engine.Engine
	prober  Prober
	metrics *observability.Metrics
}

// New creates a Fetcher.
func New(log *slog.Logger, cfg *config.Config, eng engine.Engine, prober Prober, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		log:     log.With(slog.String("package", "fetcher")),
		cfg:     cfg,
		engine:  eng,
		prober:  prober,
		metrics: metrics,
	}
}

// Download runs the request to completion, pushing progress events to
// onEvent along the way. On success it returns the result and the
// event sequence ends with completed; on failure it returns the
// classified error and the sequence ends with failed carrying the same
// error. Exactly one of the two happens.
func (f *Fetcher) Download(ctx context.Context, req *entity.Request, onEvent EventFunc) (*entity.Result, error) {
	log := f.log.With(slog.String("request_id", req.ID))
	em := newEmitter(onEvent)

	f.metrics.RecordDownloadStarted()
	stopTimer := f.metrics.DownloadTimer()
	defer stopTimer()

	fail := func(err *errs.Error) (*entity.Result, error) {
		log.ErrorContext(ctx, "download failed", slog.Any("error", err))
		f.metrics.RecordDownloadFailed(string(err.Kind))
		em.terminal(entity.ProgressEvent{Phase: entity.PhaseFailed, Err: err})

		return nil, err
	}

	log.InfoContext(ctx, "download requested", "request", req)

	em.phase(entity.PhaseValidating)

	canonical, err := urls.Validate(req.URL)
	if err != nil {
		return fail(errs.Wrap(errs.KindInvalidURL, err.Error(), err))
	}

	// Both pre-flight checks must pass; their relative order does not
	// matter.
	em.phase(entity.PhaseConnecting)

	if err := storage.EnsureDir(req.OutputDir); err != nil {
		return fail(errs.Classify(err))
	}

	if err := f.prober.Probe(ctx); err != nil {
		f.metrics.RecordProbeFailure()

		return fail(errs.Classify(err))
	}

	em.phase(entity.PhaseFetchingMetadata)

	meta, err := f.checkAvailability(ctx, canonical.URL)
	if err != nil {
		return fail(errs.Classify(err))
	}

	log.InfoContext(ctx, "video available", "metadata", meta)

	em.phase(entity.PhaseDownloading)

	dest, err := f.downloadWithRetries(ctx, log, canonical.URL, req, em)
	if err != nil {
		return fail(errs.Classify(err))
	}

	em.phase(entity.PhasePostprocessing)
	em.terminal(entity.ProgressEvent{Phase: entity.PhaseCompleted, Percent: ptr.Of(100.0)})

	f.metrics.RecordDownloadCompleted()
	log.InfoContext(ctx, "download completed", slog.String("path", dest))

	return &entity.Result{FilePath: dest}, nil
}

// DownloadAsync runs Download in a goroutine and streams events over
// the returned channel. Intermediate events are dropped when the
// consumer lags; the terminal event is always delivered unless the
// context is cancelled first. The channel closes after the terminal
// event.
func (f *Fetcher) DownloadAsync(ctx context.Context, req *entity.Request) <-chan entity.ProgressEvent {
	events := make(chan entity.ProgressEvent, consts.DefaultEventBufSize)

	go func() {
		defer close(events)

		//nolint:errcheck // the terminal event carries the outcome.
		f.Download(ctx, req, func(ev entity.ProgressEvent) {
			if ev.Phase.Terminal() {
				// The buffered channel usually has room; deliver the
				// terminal event even when ctx is already done, and
				// only give up when a stalled consumer never drains.
				select {
				case events <- ev:
					return
				default:
				}

				select {
				case events <- ev:
				case <-ctx.Done():
				}

				return
			}

			select {
			case events <- ev:
			default:
			}
		})
	}()

	return events
}

// checkAvailability fetches metadata and applies the availability
// decision. Metadata faults are not retried.
func (f *Fetcher) checkAvailability(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	f.metrics.RecordEngineRequest(f.engine.Name(), "metadata")

	meta, err := f.engine.FetchMetadata(ctx, url)
	if err != nil {
		cerr := errs.Classify(err)
		f.metrics.RecordEngineError(f.engine.Name(), string(cerr.Kind))

		return nil, cerr
	}

	if err := decideAvailability(meta); err != nil {
		return nil, err
	}

	return meta, nil
}

// downloadWithRetries drives the engine download, retrying transient
// faults up to the configured total attempt count. Non-retryable
// faults and caller aborts stop immediately.
func (f *Fetcher) downloadWithRetries(ctx context.Context, log *slog.Logger, url string, req *entity.Request, em *emitter) (string, error) {
	opts := engine.Options{
		OutputDir: req.OutputDir,
		Format:    req.Format,
		Quality:   req.Quality,
	}

	onProgress := func(p engine.Progress) {
		em.progress(entity.ProgressEvent{
			Phase:          p.Phase,
			Percent:        ptr.Of(p.Percent),
			BytesPerSecond: ptr.Of(p.BytesPerSecond),
			ETASeconds:     ptr.Of(int64(p.ETA.Seconds())),
		})
	}

	var lastErr *errs.Error

	for attempt := 1; attempt <= f.cfg.Network.MaxRetries; attempt++ {
		f.metrics.RecordEngineRequest(f.engine.Name(), "download")

		dest, err := f.engine.Download(ctx, url, opts, onProgress)
		if err == nil {
			return dest, nil
		}

		lastErr = errs.Classify(err)
		f.metrics.RecordEngineError(f.engine.Name(), string(lastErr.Kind))

		if !lastErr.Retryable || ctx.Err() != nil {
			break
		}

		if attempt < f.cfg.Network.MaxRetries {
			f.metrics.RecordRetry()
			log.WarnContext(ctx, "transient download fault, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", f.cfg.Network.MaxRetries),
				slog.Any("error", lastErr))
		}
	}

	return "", lastErr
}

// decideAvailability turns a metadata snapshot into a verdict, in
// fixed order: visibility first, then liveness, then audio presence.
func decideAvailability(meta *entity.VideoMetadata) *errs.Error {
	if meta.Availability != entity.AvailabilityPublic {
		return errs.New(errs.KindVideoUnavailable, fmt.Sprintf("video is %s", meta.Availability))
	}

	if meta.IsLive {
		return errs.New(errs.KindVideoUnavailable, "video is a live stream")
	}

	if !meta.HasAudio {
		return errs.New(errs.KindFormat, "video has no audio track")
	}

	return nil
}
