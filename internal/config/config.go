// Package config handles application configuration loading and validation.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"grabtune/internal/entity"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	App        App
	Engine     Engine
	Audio      Audio
	Network    Network
	Dir        Dir
	DepManager DepManager
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"GRABTUNE_APP_LOG_LEVEL" envDefault:"info"`
	// MetricsAddr, when set, exposes Prometheus metrics on this address.
	MetricsAddr string `env:"GRABTUNE_APP_METRICS_ADDR" envDefault:""`
}

// Engine selects the extraction engine implementation.
type Engine struct {
	Name string `env:"GRABTUNE_ENGINE" envDefault:"ytdlp"`
}

// Audio holds the requested output format and quality. Both are
// validated against the supported sets at load time, not at download time.
type Audio struct {
	Format  string `env:"GRABTUNE_AUDIO_FORMAT"  envDefault:"mp3"`
	Quality string `env:"GRABTUNE_AUDIO_QUALITY" envDefault:"192"`
}

// Network holds connectivity and retry configuration.
type Network struct {
	// Timeout bounds the reachability probe and the metadata fetch.
	Timeout time.Duration `env:"GRABTUNE_NETWORK_TIMEOUT" envDefault:"30s"`
	// MaxRetries is the total number of engine download attempts for
	// transient faults.
	MaxRetries int `env:"GRABTUNE_NETWORK_MAX_RETRIES" envDefault:"3"`
	// ProbeHost is the platform host resolved and dialed by the prober.
	ProbeHost string `env:"GRABTUNE_NETWORK_PROBE_HOST" envDefault:"www.youtube.com"`
	// ProxyURL, when set, is passed through to the extraction engine.
	ProxyURL string `env:"GRABTUNE_NETWORK_PROXY_URL" envDefault:""`
	// CookieFile, when set, is passed through to the extraction engine.
	CookieFile string `env:"GRABTUNE_NETWORK_COOKIE_FILE" envDefault:""`
}

// Dir holds directory paths for downloads and the engine cache.
type Dir struct {
	Downloads string `env:"GRABTUNE_DIR_DOWNLOADS" envDefault:"./data/downloads"`
	Cache     string `env:"GRABTUNE_DIR_CACHE"     envDefault:"./data/cache"`

	// PartTTL is how long orphaned partial files survive before the
	// cleanup sweep removes them.
	PartTTL time.Duration `env:"GRABTUNE_DIR_PART_TTL" envDefault:"24h"`
	// CleanupInterval is how often the cleanup sweep runs.
	CleanupInterval time.Duration `env:"GRABTUNE_DIR_CLEANUP_INTERVAL" envDefault:"1h"`
}

// SetAbsPaths converts the directory paths to absolute paths.
func (d *Dir) SetAbsPaths() error {
	var err error
	if d.Downloads, err = filepath.Abs(d.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if d.Cache, err = filepath.Abs(d.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	return nil
}

// DepManager holds binary dependency provisioning configuration.
type DepManager struct {
	// BinsDir is where downloaded binaries are stored.
	BinsDir string `env:"GRABTUNE_DEPMANAGER_BINS_DIR" envDefault:"./bins"`
	// UseSystemBinaries resolves yt-dlp and ffmpeg from PATH instead of
	// downloading them.
	UseSystemBinaries bool `env:"GRABTUNE_DEPMANAGER_USE_SYSTEM_BINARIES" envDefault:"true"`

	// ffmpeg release archives per platform (tar.xz).
	FFmpegLinuxAMD64 string `env:"GRABTUNE_DEPMANAGER_FFMPEG_LINUX_AMD64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz"`    //nolint:lll
	FFmpegLinuxARM64 string `env:"GRABTUNE_DEPMANAGER_FFMPEG_LINUX_ARM64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz"` //nolint:lll

	// yt-dlp binaries per platform.
	YTdlpLinuxAMD64 string `env:"GRABTUNE_DEPMANAGER_YTDLP_LINUX_AMD64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux"`         //nolint:lll
	YTdlpLinuxARM64 string `env:"GRABTUNE_DEPMANAGER_YTDLP_LINUX_ARM64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64"` //nolint:lll
	YTdlpDarwin     string `env:"GRABTUNE_DEPMANAGER_YTDLP_DARWIN" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_macos"`              //nolint:lll
}

// SetAbsPaths converts the BinsDir path to an absolute path.
func (d *DepManager) SetAbsPaths() error {
	var err error
	if d.BinsDir, err = filepath.Abs(d.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	return nil
}

// New loads configuration from environment variables and validates it.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	err = cfg.DepManager.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set dep manager absolute paths: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects out-of-set audio values and nonsensical network
// settings before any download is attempted.
func (c *Config) Validate() error {
	if _, err := entity.ParseAudioFormat(c.Audio.Format); err != nil {
		return fmt.Errorf("audio format: %w", err)
	}

	if _, err := entity.ParseAudioQuality(c.Audio.Quality); err != nil {
		return fmt.Errorf("audio quality: %w", err)
	}

	if c.Network.Timeout <= 0 {
		return fmt.Errorf("network timeout must be positive, got %v", c.Network.Timeout)
	}

	if c.Network.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.Network.MaxRetries)
	}

	return nil
}
