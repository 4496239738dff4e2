// Package logging defines the structured-logging interface used across
// farmkeeper and its slog-backed implementation.
package logging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "endpoint loaded", "endpoint", ep)
type Logger interface {
	// Debug logs diagnostic details (request attempts, state transitions).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Redact replaces a secret with a short fingerprint so log lines about the
// same token can be correlated without revealing any of it.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return "sha256:" + hex.EncodeToString(sum[:4])
}
