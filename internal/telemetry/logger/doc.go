// Package logger provides structured logging for atomstore.
//
// It wraps log/slog behind the Logger interface:
//
//   - logger.go: handler setup, dynamic level, package-level default
//   - context.go: logger, request ID and operation propagation
//   - redact.go: masking of secret-bearing attributes
//
// Library packages under pkg/ take a *slog.Logger; use Slog to hand them
// the logger built here.
package logger
