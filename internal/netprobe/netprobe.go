// Package netprobe answers whether the video platform is reachable
// right now, independent of any specific video.
package netprobe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"grabtune/internal/consts"
	"grabtune/internal/errs"
)

// lookupFunc resolves a host to addresses.
type lookupFunc func(ctx context.Context, host string) ([]string, error)

// dialFunc establishes a connection.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Prober performs a bounded-time reachability check: DNS resolution of
// the platform host plus a minimal TCP connection attempt.
type Prober struct {
	log     *slog.Logger
	host    string
	port    string
	timeout time.Duration

	lookup lookupFunc
	dial   dialFunc
}

// Option customizes a Prober. Used by tests to stub out real I/O.
type Option func(*Prober)

// WithLookup replaces the DNS lookup function.
func WithLookup(fn lookupFunc) Option {
	return func(p *Prober) { p.lookup = fn }
}

// WithDial replaces the dial function.
func WithDial(fn dialFunc) Option {
	return func(p *Prober) { p.dial = fn }
}

// New creates a Prober for the given host. A non-positive timeout
// falls back to the default.
func New(log *slog.Logger, host string, timeout time.Duration, opts ...Option) *Prober {
	if host == "" {
		host = consts.DefaultProbeHost
	}

	if timeout <= 0 {
		timeout = consts.DefaultNetworkTimeout
	}

	resolver := &net.Resolver{}
	dialer := &net.Dialer{}

	p := &Prober{
		log:     log.With(slog.String("package", "netprobe")),
		host:    host,
		port:    consts.DefaultProbePort,
		timeout: timeout,
		lookup:  resolver.LookupHost,
		dial:    dialer.DialContext,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe checks reachability within the configured timeout. It never
// hangs past the timeout and never returns an unclassified fault:
// failures map to a network error, or cancelled when the caller aborted.
func (p *Prober) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()

	if _, err := p.lookup(ctx, p.host); err != nil {
		return p.classify(fmt.Sprintf("resolve %s", p.host), err)
	}

	conn, err := p.dial(ctx, "tcp", net.JoinHostPort(p.host, p.port))
	if err != nil {
		return p.classify(fmt.Sprintf("connect to %s", p.host), err)
	}
	conn.Close()

	p.log.DebugContext(ctx, "platform reachable",
		slog.String("host", p.host),
		slog.Duration("took", time.Since(start)))

	return nil
}

// classify maps probe failures: caller aborts become cancelled,
// everything else is a network fault.
func (p *Prober) classify(op string, err error) *errs.Error {
	if errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindCancelled, op, err)
	}

	return errs.Wrap(errs.KindNetwork, fmt.Sprintf("%s: %v", op, err), err)
}
