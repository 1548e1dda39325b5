// Package observability provides logging and metrics support for the
// reporting pipeline.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for pipeline runs, exports, and uploads
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("run_id", runID).Msg("pipeline run started")
//
// Add run context to a logger:
//
//	logger = observability.WithRunContext(logger, runID)
//
// # Metrics
//
// Initialize and record metrics:
//
//	metrics := observability.NewMetrics("research_helper")
//	metrics.RunsStarted.Inc()
//	metrics.ArtifactsWritten.WithLabelValues("csv").Inc()
//
// # Standard Fields
//
// Common fields used across the pipeline:
//
//   - run_id: Pipeline run identifier
//   - source: Input table identifier (file base name)
//   - path: File path of an input or artifact
//   - artifact: Output artifact name
//   - component: Emitting component (loader, merger, exporter, ...)
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
