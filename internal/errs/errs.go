// Package errs defines the download error taxonomy and the single
// classification point for faults crossing the extraction engine boundary.
package errs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Kind is a stable error category. Callers branch on Kind, never on
// message text.
type Kind string

// Error kinds, one per failure layer.
const (
	// KindInvalidURL marks a syntactic or identifier problem with the URL.
	KindInvalidURL Kind = "invalid_url"
	// KindNetwork marks an unreachable service, DNS failure or timeout.
	KindNetwork Kind = "network"
	// KindPermission marks a filesystem access denial.
	KindPermission Kind = "permission"
	// KindVideoUnavailable marks a private, geo-blocked, removed or live video.
	KindVideoUnavailable Kind = "video_unavailable"
	// KindFormat marks a missing audio stream or invalid format/quality request.
	KindFormat Kind = "format"
	// KindCancelled marks a caller-initiated abort.
	KindCancelled Kind = "cancelled"
	// KindUnknown marks an engine fault matching no recognized pattern.
	KindUnknown Kind = "unknown"
)

// Error is a classified download fault. Only network faults are
// retryable, and only during the downloading phase.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer for structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(e.Kind)),
		slog.String("message", e.Message),
		slog.Bool("retryable", e.Retryable),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// New creates a classified error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Retryable: kind == KindNetwork,
	}
}

// Wrap creates a classified error keeping err as the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	e := New(kind, message)
	e.Err = err

	return e
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// IsRetryable reports whether err is a classified, retryable fault.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}

	return false
}

// rule matches an engine fault message to a kind. Rules are checked
// top-down; the first match wins, so the most specific reason surfaces.
type rule struct {
	keywords []string
	kind     Kind
}

var classifyRules = []rule{
	{[]string{"private video", "video unavailable", "has been removed", "deleted", "no longer available"}, KindVideoUnavailable},
	{[]string{"sign in", "login required", "members-only", "age-restricted"}, KindVideoUnavailable},
	{[]string{"available in your country", "geo restrict", "blocked in your"}, KindVideoUnavailable},
	{[]string{"live event", "live stream", "premiere"}, KindVideoUnavailable},
	{[]string{"requested format", "no audio", "unsupported codec", "postprocessing", "conversion failed"}, KindFormat},
	{[]string{"permission denied", "read-only file system", "access is denied"}, KindPermission},
	{[]string{"timed out", "timeout", "connection reset", "connection refused", "network is unreachable",
		"name resolution", "no such host", "dns", "temporary failure", "unable to download", "http error 5"}, KindNetwork},
}

// Classify maps an arbitrary fault to exactly one *Error. It is
// idempotent: an already-classified error passes through unchanged and
// is never re-wrapped into a vaguer category.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) {
		return Wrap(KindCancelled, "download cancelled", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindNetwork, "operation timed out", err)
	}

	msg := strings.ToLower(err.Error())
	for _, r := range classifyRules {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return Wrap(r.kind, err.Error(), err)
			}
		}
	}

	// Unrecognized faults keep their original message and are never
	// silently swallowed.
	return Wrap(KindUnknown, err.Error(), err)
}
