package netprobe_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"grabtune/internal/errs"
	"grabtune/internal/netprobe"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeConn struct{ net.Conn }

func (fakeConn) Close() error { return nil }

func TestProbe(t *testing.T) {
	tests := []struct {
		name     string
		lookup   func(ctx context.Context, host string) ([]string, error)
		dial     func(ctx context.Context, network, addr string) (net.Conn, error)
		wantKind errs.Kind
	}{
		{
			name: "reachable",
			lookup: func(_ context.Context, _ string) ([]string, error) {
				return []string{"203.0.113.7"}, nil
			},
			dial: func(_ context.Context, _, _ string) (net.Conn, error) {
				return fakeConn{}, nil
			},
		},
		{
			name: "dns failure",
			lookup: func(_ context.Context, host string) ([]string, error) {
				return nil, &net.DNSError{Err: "no such host", Name: host}
			},
			wantKind: errs.KindNetwork,
		},
		{
			name: "dial refused",
			lookup: func(_ context.Context, _ string) ([]string, error) {
				return []string{"203.0.113.7"}, nil
			},
			dial: func(_ context.Context, _, _ string) (net.Conn, error) {
				return nil, errors.New("connect: connection refused")
			},
			wantKind: errs.KindNetwork,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := []netprobe.Option{netprobe.WithLookup(tc.lookup)}
			if tc.dial != nil {
				opts = append(opts, netprobe.WithDial(tc.dial))
			}

			p := netprobe.New(testLogger(), "probe.test", time.Second, opts...)

			err := p.Probe(context.Background())

			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("Probe() failed: %v", err)
				}

				return
			}

			if err == nil {
				t.Fatal("Probe() succeeded, want error")
			}

			if kind := errs.KindOf(err); kind != tc.wantKind {
				t.Errorf("got kind %q, want %q", kind, tc.wantKind)
			}
		})
	}
}

func TestProbeHonorsTimeout(t *testing.T) {
	blockingLookup := func(ctx context.Context, _ string) ([]string, error) {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	p := netprobe.New(testLogger(), "probe.test", 10*time.Millisecond,
		netprobe.WithLookup(blockingLookup))

	start := time.Now()
	err := p.Probe(context.Background())

	if err == nil {
		t.Fatal("Probe() succeeded, want timeout error")
	}

	if kind := errs.KindOf(err); kind != errs.KindNetwork {
		t.Errorf("got kind %q, want %q", kind, errs.KindNetwork)
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Probe() took %v, must not hang past its timeout", elapsed)
	}
}

func TestProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blockingLookup := func(ctx context.Context, _ string) ([]string, error) {
		return nil, ctx.Err()
	}

	p := netprobe.New(testLogger(), "probe.test", time.Second,
		netprobe.WithLookup(blockingLookup))

	err := p.Probe(ctx)
	if err == nil {
		t.Fatal("Probe() succeeded on cancelled context")
	}

	if kind := errs.KindOf(err); kind != errs.KindCancelled {
		t.Errorf("got kind %q, want %q", kind, errs.KindCancelled)
	}
}
