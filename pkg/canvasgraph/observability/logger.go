// Package observability provides structured logging, metrics, and
// tracing for the canvas engine.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds canvas context to a logger.
// Returns a new logger with project_id and node_id fields.
func EnrichLogger(logger *slog.Logger, projectID, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("project_id", projectID),
		slog.String("node_id", nodeID),
	)
}

// LogRebuild logs one builder run.
func LogRebuild(logger *slog.Logger, projectID, signature string, nodes, edges int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("canvas rebuilt",
		slog.String("project_id", projectID),
		slog.String("signature", signature),
		slog.Int("visible_nodes", nodes),
		slog.Int("visible_edges", edges),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatch logs a successful gesture dispatch.
func LogDispatch(logger *slog.Logger, op, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("gesture dispatched",
		slog.String("op", op),
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchError logs a failed gesture dispatch. Dispatch failures are
// non-fatal: the next structural sync resolves any divergence.
func LogDispatchError(logger *slog.Logger, op, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("gesture dispatch failed",
		slog.String("op", op),
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogDropIgnored logs a drop gesture that was aborted before dispatch.
func LogDropIgnored(logger *slog.Logger, kind string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("drop ignored",
		slog.String("payload_kind", kind),
		slog.String("error", err.Error()),
	)
}

// LogSettingsError logs a local settings store failure (non-fatal).
func LogSettingsError(logger *slog.Logger, projectID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("settings store failed",
		slog.String("project_id", projectID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000.0
	}
}
