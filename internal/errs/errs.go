// Package errs defines sentinel errors shared across the project.
package errs

import "errors"

var (
	// ErrSinkUnavailable means the telemetry collector could not be
	// reached; the whole collection cycle is aborted.
	ErrSinkUnavailable = errors.New("telemetry collector unavailable")

	// ErrUnknownReportKind means a report carried a kind the collector
	// does not recognize.
	ErrUnknownReportKind = errors.New("unknown report kind")
)
