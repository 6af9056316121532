package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"content_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"content_type"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "storage_operations_total",
			Help:      "Total object store operations",
		},
		[]string{"operation", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "storage_duration_seconds",
			Help:      "Object store operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	ReconcileClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "reconcile_classified_total",
			Help:      "Entries classified by reconciliation reports",
		},
		[]string{"class"},
	)

	PurgedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "purged_files_total",
			Help:      "Detached files removed by the purge sweep",
		},
	)

	JobPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "heavybid",
			Subsystem: "auction_media",
			Name:      "job_poll_attempts",
			Help:      "Poll attempts until a publish job appeared",
			Buckets:   []float64{1, 2, 3, 5, 8, 10},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(contentType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
	}
}

// RecordStorageOperation records an object store operation
func RecordStorageOperation(operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageDuration.WithLabelValues(operation).Observe(durationSec)
}

// StorageTimer starts a timer for one store operation; call the returned
// func with the operation's error to record it.
func StorageTimer(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		RecordStorageOperation(operation, status, time.Since(start).Seconds())
	}
}

// RecordReconcileReport records the classification counts of one report.
func RecordReconcileReport(storageOrphans, dbOrphans, unassigned int) {
	ReconcileClassifiedTotal.WithLabelValues("storage_orphan").Add(float64(storageOrphans))
	ReconcileClassifiedTotal.WithLabelValues("db_orphan").Add(float64(dbOrphans))
	ReconcileClassifiedTotal.WithLabelValues("unassigned").Add(float64(unassigned))
}
