// Package logger provides structured logging for zpipe.
//
// It wraps log/slog:
//
//   - logger.go: handler construction and the runtime-adjustable level
//   - context.go: session id and logger propagation through context
//   - redact.go: payload truncation and endpoint credential stripping
//
// Logs are written to stderr; stdout is reserved for prompts and
// received messages.
package logger
