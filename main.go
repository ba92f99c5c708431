// entry point of the application
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"grabtune/internal/config"
	"grabtune/internal/consts"
	"grabtune/internal/depmanager"
	"grabtune/internal/engine"
	"grabtune/internal/entity"
	"grabtune/internal/errs"
	"grabtune/internal/fetcher"
	"grabtune/internal/netprobe"
	"grabtune/internal/observability"
	"grabtune/internal/storage"
	"grabtune/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
		Writer:    os.Stderr,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <video-url> [output-dir]\n", os.Args[0])
		stop()
		os.Exit(2)
	}

	url := os.Args[1]

	outputDir := cfg.Dir.Downloads
	if len(os.Args) > 2 {
		outputDir = os.Args[2]
	}

	metrics := observability.New(prometheus.DefaultRegisterer)

	if cfg.App.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.App.MetricsAddr)
	}

	eng, err := buildEngine(ctx, log, cfg)
	if err != nil {
		log.ErrorContext(ctx, "engine setup failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	cleaner := storage.NewCleaner(log, outputDir, cfg.Dir.PartTTL, metrics)
	go cleaner.Start(ctx, cfg.Dir.CleanupInterval)

	prober := netprobe.New(log, cfg.Network.ProbeHost, cfg.Network.Timeout)
	f := fetcher.New(log, cfg, eng, prober, metrics)

	req, err := entity.NewRequest(url, outputDir, cfg.Audio.Format, cfg.Audio.Quality)
	if err != nil {
		log.ErrorContext(ctx, "bad request", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	var failure *errs.Error

	for ev := range f.DownloadAsync(ctx, req) {
		log.InfoContext(ctx, "progress", "event", ev)

		if ev.Phase == entity.PhaseFailed {
			failure = ev.Err
		}
	}

	if failure != nil {
		fmt.Fprintf(os.Stderr, "download failed (%s): %s\n", failure.Kind, failure.Message)
		stop()
		os.Exit(1)
	}

	log.InfoContext(ctx, "grabtune finished")
}

// buildEngine provisions external binaries and selects the configured
// extraction engine.
func buildEngine(ctx context.Context, log *slog.Logger, cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine.Name {
	case consts.EngineMock:
		return engine.NewMock(log), nil
	case consts.EngineYTdlp:
		depMgr := depmanager.New(log, cfg)

		log.InfoContext(ctx, "resolving yt-dlp and ffmpeg. first run may take some time...")

		if err := depMgr.Start(ctx); err != nil {
			return nil, fmt.Errorf("resolve binaries: %w", err)
		}

		ytdlpPath := depMgr.InstalledPath(depmanager.BinaryYTdlp)

		return engine.NewYTdlp(log, cfg, ytdlpPath, depMgr.FFmpegDir()), nil
	default:
		return nil, fmt.Errorf("unknown engine: %q", cfg.Engine.Name)
	}
}

func serveMetrics(ctx context.Context, log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.InfoContext(ctx, "metrics listening", slog.String("addr", addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "metrics server", slog.Any("error", err))
	}
}
