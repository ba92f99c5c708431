// Package depmanager provisions the external binaries the extraction
// engine shells out to: yt-dlp, ffmpeg and ffprobe. It either resolves
// them from the system PATH or downloads platform builds into a local
// bins directory.
package depmanager

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"grabtune/internal/config"

	"github.com/ulikunitz/xz"
)

// BinaryName identifies an external binary dependency.
type BinaryName string

// Binary dependency names.
const (
	BinaryYTdlp   BinaryName = "yt-dlp"
	BinaryFFmpeg  BinaryName = "ffmpeg"
	BinaryFFprobe BinaryName = "ffprobe"
)

const (
	platformDarwin  = "darwin"
	platformLinux   = "linux"
	platformWindows = "windows"
	archARM64       = "arm64"
)

const (
	// downloadTimeout bounds a single binary download.
	downloadTimeout = 10 * time.Minute

	filePermExecutable = 0o755
)

// Platform is the OS and architecture combination of the host.
type Platform struct {
	OS   string
	Arch string
}

// String returns the platform in "os/arch" form.
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Manager resolves and installs the binary dependencies.
type Manager struct {
	log      *slog.Logger
	cfg      *config.Config
	platform Platform
	client   *http.Client

	mu       sync.RWMutex
	binPaths map[BinaryName]string
}

// New creates a dependency manager for the host platform.
func New(log *slog.Logger, cfg *config.Config) *Manager {
	return &Manager{
		log: log.With(slog.String("package", "depmanager")),
		cfg: cfg,
		platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		client: &http.Client{
			Timeout: downloadTimeout,
		},
		binPaths: make(map[BinaryName]string),
	}
}

// Start resolves all binaries, either from the system PATH or by
// downloading them, depending on configuration.
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.DepManager.UseSystemBinaries {
		return m.SetSystemBinaries()
	}

	return m.InstallAll(ctx)
}

// SetSystemBinaries resolves every binary from the system PATH.
func (m *Manager) SetSystemBinaries() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, binary := range []BinaryName{BinaryYTdlp, BinaryFFmpeg, BinaryFFprobe} {
		path, err := exec.LookPath(string(binary))
		if err != nil {
			return fmt.Errorf("%s not found in system PATH: %w", binary, err)
		}

		m.binPaths[binary] = path
	}

	return nil
}

// InstallAll downloads any binary that is not already present in the
// bins directory. Existing non-empty files are kept as-is.
func (m *Manager) InstallAll(ctx context.Context) error {
	err := os.MkdirAll(m.cfg.DepManager.BinsDir, filePermExecutable)
	if err != nil {
		return fmt.Errorf("create bins directory: %w", err)
	}

	// ffmpeg and ffprobe arrive in one archive, so ffprobe is never
	// downloaded on its own.
	for _, binary := range []BinaryName{BinaryFFmpeg, BinaryYTdlp} {
		if m.isBinaryExists(binary) {
			m.setInstalled(binary)
			m.log.DebugContext(ctx, "binary already exists", slog.String("binary", string(binary)))

			continue
		}

		err = m.downloadAndInstall(ctx, binary)
		if err != nil {
			return fmt.Errorf("download and install %s: %w", binary, err)
		}
	}

	if m.isBinaryExists(BinaryFFprobe) {
		m.setInstalled(BinaryFFprobe)
	}

	m.mu.RLock()
	paths := make(map[BinaryName]string, len(m.binPaths))
	for k, v := range m.binPaths {
		paths[k] = v
	}
	m.mu.RUnlock()

	m.log.InfoContext(ctx, "all binaries are installed", slog.Any("binaries", paths))

	return nil
}

// BinaryPath returns where a binary lives in the bins directory.
func (m *Manager) BinaryPath(name BinaryName) string {
	filename := string(name)
	if m.platform.OS == platformWindows {
		filename += ".exe"
	}

	return filepath.Join(m.cfg.DepManager.BinsDir, filename)
}

// InstalledPath returns the resolved path for a binary, or empty when
// it has not been resolved.
func (m *Manager) InstalledPath(name BinaryName) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.binPaths[name]
}

// FFmpegDir returns the directory holding the resolved ffmpeg binary,
// or empty when ffmpeg is expected on PATH.
func (m *Manager) FFmpegDir() string {
	path := m.InstalledPath(BinaryFFmpeg)
	if path == "" || m.cfg.DepManager.UseSystemBinaries {
		return ""
	}

	return filepath.Dir(path)
}

func (m *Manager) isBinaryExists(name BinaryName) bool {
	info, err := os.Stat(m.BinaryPath(name))

	return err == nil && info.Size() > 0
}

func (m *Manager) setInstalled(name BinaryName) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.binPaths[name] = m.BinaryPath(name)
}

func (m *Manager) downloadAndInstall(ctx context.Context, name BinaryName) error {
	log := m.log.With(slog.String("binary", string(name)))

	url := m.binaryURL(name)
	if url == "" {
		return fmt.Errorf("no download URL configured for %s on %s", name, m.platform)
	}

	log.InfoContext(ctx, "downloading binary", slog.String("url", url))

	paths, err := m.downloadDependency(ctx, url, name)
	if err != nil {
		return fmt.Errorf("download dependency: %w", err)
	}

	for _, path := range paths {
		if err := os.Chmod(path, filePermExecutable); err != nil {
			return fmt.Errorf("chmod: %w", err)
		}

		m.setInstalled(BinaryName(filepath.Base(path)))
	}

	log.InfoContext(ctx, "binary installed", slog.Any("paths", paths))

	return nil
}

func (m *Manager) binaryURL(name BinaryName) string {
	cfg := m.cfg.DepManager

	switch name {
	case BinaryYTdlp:
		if m.platform.OS == platformDarwin {
			return cfg.YTdlpDarwin
		}

		return m.selectURL(cfg.YTdlpLinuxARM64, cfg.YTdlpLinuxAMD64)
	case BinaryFFmpeg, BinaryFFprobe:
		return m.selectURL(cfg.FFmpegLinuxARM64, cfg.FFmpegLinuxAMD64)
	}

	return ""
}

func (m *Manager) selectURL(linuxARM64, linuxAMD64 string) string {
	if m.platform.OS == platformLinux && m.platform.Arch == archARM64 && linuxARM64 != "" {
		return linuxARM64
	}

	return linuxAMD64
}

// downloadDependency fetches a binary or archive and installs the
// needed files into the bins directory. Returns installed paths.
func (m *Manager) downloadDependency(ctx context.Context, url string, name BinaryName) ([]string, error) {
	binPath := m.BinaryPath(name)
	destDir := filepath.Dir(binPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(destDir, "download-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmpFile.Name()

	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if !strings.HasSuffix(url, ".tar.xz") {
		if err := os.Rename(tmpPath, binPath); err != nil {
			return nil, fmt.Errorf("rename: %w", err)
		}

		return []string{binPath}, nil
	}

	targets := filesNeeded(name)

	err = m.extractFromTarXZ(tmpPath, destDir, targets)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	paths := make([]string, 0, len(targets))
	for target := range targets {
		paths = append(paths, filepath.Join(destDir, target))
	}

	return paths, nil
}

// filesNeeded returns the files to pull out of an archive for a binary.
func filesNeeded(name BinaryName) map[string]struct{} {
	if name == BinaryFFmpeg {
		return map[string]struct{}{
			string(BinaryFFmpeg):  {},
			string(BinaryFFprobe): {},
		}
	}

	return map[string]struct{}{string(name): {}}
}

func (m *Manager) extractFromTarXZ(archivePath, destDir string, targets map[string]struct{}) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open tar.xz: %w", err)
	}
	defer file.Close()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("create xz reader: %w", err)
	}

	return extractTarSelected(xzReader, destDir, targets)
}

func extractTarSelected(reader io.Reader, destDir string, targets map[string]struct{}) error {
	tarReader := tar.NewReader(reader)
	extracted := 0

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		filename := filepath.Base(header.Name)
		if _, ok := targets[filename]; !ok {
			continue
		}

		destPath := filepath.Join(destDir, filename)

		outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermExecutable)
		if err != nil {
			return fmt.Errorf("create dest file: %w", err)
		}

		_, err = io.Copy(outFile, tarReader)
		outFile.Close()

		if err != nil {
			return fmt.Errorf("extract file: %w", err)
		}

		extracted++

		if extracted == len(targets) {
			return nil
		}
	}

	if extracted == 0 {
		return fmt.Errorf("no target files found in tar archive")
	}

	return nil
}
