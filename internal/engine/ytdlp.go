package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"grabtune/internal/config"
	"grabtune/internal/consts"
	"grabtune/internal/entity"
	"grabtune/internal/errs"
	"grabtune/pkg/calc"

	"github.com/lrstanley/go-ytdlp"
)

const (
	// printAfterMove makes yt-dlp report the final path once
	// postprocessing has moved the file in place.
	printAfterMove = "after_move:filepath"

	filenameTemplate = "%(title)s [%(id)s].%(ext)s"
)

// YTdlp is the yt-dlp backed extraction engine.
type YTdlp struct {
	log       *slog.Logger
	cfg       *config.Config
	ytdlpPath string
	ffmpegDir string
}

// NewYTdlp creates the yt-dlp engine. Either path may be empty when the
// binary is resolvable from PATH.
func NewYTdlp(log *slog.Logger, cfg *config.Config, ytdlpPath, ffmpegDir string) *YTdlp {
	return &YTdlp{
		log:       log.With(slog.String("package", "engine"), slog.String("engine", consts.EngineYTdlp)),
		cfg:       cfg,
		ytdlpPath: ytdlpPath,
		ffmpegDir: ffmpegDir,
	}
}

// Name identifies the engine implementation.
func (e *YTdlp) Name() string { return consts.EngineYTdlp }

// FetchMetadata resolves the URL into a metadata snapshot without
// downloading any media bytes. The call is bounded by the configured
// network timeout.
func (e *YTdlp) FetchMetadata(ctx context.Context, url string) (*entity.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Network.Timeout)
	defer cancel()

	command := ytdlp.New().
		CacheDir(e.cfg.Dir.Cache).
		NoPlaylist().
		SkipDownload().
		DumpSingleJSON()

	command = e.applyNetworkOptions(command)

	res, err := command.Run(ctx, url)
	if err != nil {
		e.log.ErrorContext(ctx, "metadata fetch failed", slog.Any("error", err), slog.Any("result", Result{res}))

		return nil, e.classifyRun(err, res)
	}

	meta, err := ParseMetadata(res.Stdout)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnknown, "video information could not be retrieved", err)
	}

	e.log.DebugContext(ctx, "metadata fetched", "metadata", meta)

	return meta, nil
}

// Download fetches the audio and converts it to the requested format
// and quality, reporting normalized progress through onProgress.
func (e *YTdlp) Download(ctx context.Context, url string, opts Options, onProgress ProgressFunc) (string, error) {
	progressFn := func(update ytdlp.ProgressUpdate) {
		if onProgress == nil {
			return
		}

		onProgress(normalizeProgress(update))
	}

	command := ytdlp.New().
		CacheDir(e.cfg.Dir.Cache).
		NoPlaylist().
		RestrictFilenames().
		ForceOverwrites().
		ExtractAudio().
		AudioFormat(string(opts.Format)).
		AudioQuality(qualityArg(opts.Quality)).
		Output(filepath.Join(opts.OutputDir, filenameTemplate)).
		Print(printAfterMove).
		ProgressFunc(consts.DefaultProgressFreq, progressFn)

	command = e.applyNetworkOptions(command)

	if e.ffmpegDir != "" {
		command = command.FFmpegLocation(e.ffmpegDir)
	}

	res, err := command.Run(ctx, url)
	if err != nil {
		e.log.ErrorContext(ctx, "download failed", slog.Any("error", err), slog.Any("result", Result{res}))

		return "", e.classifyRun(err, res)
	}

	dest := ParseDestination(res.Stdout)
	if dest == "" {
		return "", errs.New(errs.KindUnknown, fmt.Sprintf("downloaded file not found in %s", opts.OutputDir))
	}

	e.log.InfoContext(ctx, "download finished", slog.String("path", dest))

	return dest, nil
}

func (e *YTdlp) applyNetworkOptions(command *ytdlp.Command) *ytdlp.Command {
	if e.ytdlpPath != "" {
		command = command.SetExecutable(e.ytdlpPath)
	}

	if e.cfg.Network.ProxyURL != "" {
		command = command.Proxy(e.cfg.Network.ProxyURL)
	}

	if e.cfg.Network.CookieFile != "" {
		command = command.Cookies(e.cfg.Network.CookieFile)
	}

	return command
}

// classifyRun maps a yt-dlp failure to the error taxonomy exactly once.
// Stderr is folded into the message so the classifier sees the engine's
// own wording, while the original cause stays on the unwrap chain.
func (e *YTdlp) classifyRun(err error, res *ytdlp.Result) *errs.Error {
	if res != nil && res.Stderr != "" {
		return errs.Classify(fmt.Errorf("%w: %s", err, res.Stderr))
	}

	return errs.Classify(err)
}

// normalizeProgress converts a native yt-dlp progress update into the
// engine-neutral snapshot.
func normalizeProgress(update ytdlp.ProgressUpdate) Progress {
	phase := entity.PhaseDownloading
	if strings.EqualFold(string(update.Status), "finished") ||
		strings.Contains(strings.ToLower(string(update.Status)), "post") {
		phase = entity.PhasePostprocessing
	}

	downloaded := int64(update.DownloadedBytes)
	total := int64(update.TotalBytes)

	var speed float64
	var eta time.Duration
	if !update.Started.IsZero() {
		speed = calc.SpeedBPS(downloaded, update.Started)
		eta = calc.ETA(downloaded, total, update.Started)
	}

	return Progress{
		Phase:          phase,
		Percent:        calc.Percent(downloaded, total),
		BytesPerSecond: speed,
		ETA:            eta,
	}
}

// qualityArg converts the requested quality into yt-dlp's
// --audio-quality argument: VBR 0 for best, otherwise a fixed bitrate.
func qualityArg(q entity.AudioQuality) string {
	if q == entity.QualityBest {
		return "0"
	}

	return string(q) + "K"
}
