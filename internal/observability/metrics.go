package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the reporting pipeline.
// Metrics are organized by stage: loading, merging, exporting, rendering,
// filtering, and uploads. All counters and histograms are registered via
// promauto with the given registerer.
type Metrics struct {
	// RunsStarted counts pipeline runs initiated.
	RunsStarted prometheus.Counter

	// RunsCompleted counts pipeline runs that finished successfully.
	RunsCompleted prometheus.Counter

	// RunsFailed counts pipeline runs that ended in failure.
	RunsFailed prometheus.Counter

	// RunDuration observes the end-to-end duration of a run in seconds.
	RunDuration prometheus.Histogram

	// FilesLoaded counts input tables read successfully.
	FilesLoaded prometheus.Counter

	// FilesSkipped counts input tables skipped as unreadable.
	FilesSkipped prometheus.Counter

	// RowsMerged counts rows of the merged (pre-dedup) table across runs.
	RowsMerged prometheus.Counter

	// DuplicatesFound counts rows flagged as duplicates across runs.
	DuplicatesFound prometheus.Counter

	// ArtifactsWritten counts exported artifacts by format (csv, xlsx).
	ArtifactsWritten *prometheus.CounterVec

	// ChartsRendered counts rendered chart images by kind.
	ChartsRendered *prometheus.CounterVec

	// ChartsSkipped counts charts skipped because their column was absent.
	ChartsSkipped *prometheus.CounterVec

	// FilterRuns counts filter passes by condition (contains, does_not_contain).
	FilterRuns *prometheus.CounterVec

	// UploadsReceived counts files accepted by the upload endpoint.
	UploadsReceived prometheus.Counter
}

// NewMetrics creates a Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a Metrics instance registered with reg. Tests pass
// a fresh registry to avoid duplicate-registration panics.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of pipeline runs started",
		}),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Total number of pipeline runs completed successfully",
		}),
		RunsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Total number of pipeline runs that failed",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		FilesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_loaded_total",
			Help:      "Total number of input tables loaded",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Total number of input tables skipped as unreadable",
		}),
		RowsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_merged_total",
			Help:      "Total number of rows in merged tables",
		}),
		DuplicatesFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_found_total",
			Help:      "Total number of rows flagged as duplicates",
		}),
		ArtifactsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Total number of table artifacts written by format",
		}, []string{"format"}),
		ChartsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Total number of chart images rendered by kind",
		}, []string{"kind"}),
		ChartsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_skipped_total",
			Help:      "Total number of charts skipped due to an absent column",
		}, []string{"kind"}),
		FilterRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_runs_total",
			Help:      "Total number of filter passes by condition",
		}, []string{"condition"}),
		UploadsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_received_total",
			Help:      "Total number of files accepted by the upload endpoint",
		}),
	}
}
