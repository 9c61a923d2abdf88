package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	constants "pimonitor/config"
)

// Failure reasons recorded in categoryFailures
const (
	reasonError       = "error"
	reasonUnsupported = "unsupported"
	reasonTimeout     = "timeout"
	reasonPanic       = "panic"
)

var (
	categoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "snapshot_category_duration_seconds",
			Help:      "Time taken to read one snapshot category",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 3},
		},
		[]string{"category"},
	)

	categoryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "snapshot_category_failures_total",
			Help:      "Snapshot categories replaced by their placeholder",
		},
		[]string{"category", "reason"},
	)

	snapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "snapshots_total",
			Help:      "Snapshots composed, by kind",
		},
		[]string{"kind"}, // live or dead
	)
)
