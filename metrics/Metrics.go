package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var TotalRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_http_requests_total",
		Help: "Number of http requests.",
	},
	[]string{"path", "code", "method"},
)

var HttpDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "research_http_request_duration_seconds",
		Help: "Http request duration.",
		Buckets: []float64{
			0.1, // 100 ms
			0.25,
			0.5,
			1,
			3,
			10,
		},
	},
	[]string{"path", "code", "method"},
)

var DeletionsScheduled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_deletion_scheduled_total",
		Help: "Number of scheduled user deletions.",
	},
	[]string{"test_mode"},
)

var IdentityDeletions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_identity_deletion_total",
		Help: "Identity provider account deletions by outcome.",
	},
	[]string{"outcome"},
)

var SweepRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_sweep_runs_total",
		Help: "Deferred deletion sweep runs by final status.",
	},
	[]string{"status"},
)

var SweepRecordsProcessed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "research_sweep_records_processed_total",
		Help: "Due deferred deletion records picked up by the sweep.",
	},
)

var SweepRecordsExecuted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "research_sweep_records_executed_total",
		Help: "Deferred deletion records marked executed.",
	},
)

var SweepFilesDeleted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "research_sweep_files_deleted_total",
		Help: "User files removed from object storage.",
	},
)

var SweepRowsDeleted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_sweep_rows_deleted_total",
		Help: "Dependent rows removed by the sweep.",
	},
	[]string{"table"},
)

var SweepErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "research_sweep_errors_total",
		Help: "Sweep step failures.",
	},
	[]string{"step"},
)

var SweepDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "research_sweep_duration_seconds",
		Help:    "Deferred deletion sweep duration.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	},
)

func RegisterAllPrometheusApplicationMetrics() {
	prometheus.MustRegister(
		TotalRequests,
		HttpDuration,
		DeletionsScheduled,
		IdentityDeletions,
		SweepRuns,
		SweepRecordsProcessed,
		SweepRecordsExecuted,
		SweepFilesDeleted,
		SweepRowsDeleted,
		SweepErrors,
		SweepDuration,
	)
}
