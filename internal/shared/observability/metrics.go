package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sl2c_translations_total",
		Help: "Total number of translated sources by outcome (ok or diagnostics).",
	}, []string{"status"})

	ArtifactsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sl2c_artifacts_total",
		Help: "Total number of SL1 artefacts produced.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sl2c_diagnostics_total",
		Help: "Total number of diagnostics reported, by kind.",
	}, []string{"kind"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sl2c_stage_seconds",
		Help:    "Time spent in each translation stage.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	}, []string{"stage"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sl2c_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sl2c_watcher_throttled_total",
		Help: "Total number of change batches delayed by the rebuild limiter.",
	})

	HistoryWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sl2c_history_write_errors_total",
		Help: "Total number of runs that could not be recorded in the history store.",
	})
)

const (
	StatusOK          = "ok"
	StatusDiagnostics = "diagnostics"
)
