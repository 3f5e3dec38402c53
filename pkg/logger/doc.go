// Package logger builds slog loggers with environment-appropriate defaults
// and provides semantic attribute helpers so log keys stay consistent
// across the codebase.
package logger
