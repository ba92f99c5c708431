// Package consts defines application-wide constants.
package consts

import "time"

const (
	// DefaultNetworkTimeout bounds the connectivity probe and the
	// metadata fetch.
	DefaultNetworkTimeout = 30 * time.Second
	// DefaultMaxRetries is the total number of engine download attempts.
	DefaultMaxRetries = 3
	// DefaultProbeHost is the platform host used for reachability checks.
	DefaultProbeHost = "www.youtube.com"
	// DefaultProbePort is the port dialed during reachability checks.
	DefaultProbePort = "443"
	// DefaultProgressFreq is how often the engine reports progress.
	DefaultProgressFreq = 200 * time.Millisecond
	// DefaultEventBufSize is the buffer of the async progress channel.
	DefaultEventBufSize = 16
	// DefaultPartTTL is how long stale partial files are kept before cleanup.
	DefaultPartTTL = 24 * time.Hour
	// DefaultSimulateTime is the simulated duration of a mock engine download.
	DefaultSimulateTime = 1 * time.Second
)

// Extraction engine identifiers.
const (
	// EngineYTdlp is the yt-dlp backed engine.
	EngineYTdlp = "ytdlp"
	// EngineMock is the simulated engine used in tests and dry runs.
	EngineMock = "mock"
)
