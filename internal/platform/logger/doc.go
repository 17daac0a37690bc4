// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Records logged with a context carrying an active
// OpenTelemetry span are annotated with that span's identifiers.
package logger
