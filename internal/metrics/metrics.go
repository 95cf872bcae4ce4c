package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_rate_limited_requests_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Media Metrics
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_media_uploads_total",
			Help: "Total number of media store uploads",
		},
		[]string{"kind", "status"},
	)

	MediaUploadSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_media_upload_size_bytes",
			Help:    "Size of uploaded media in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 13), // 64KB to 256MB
		},
		[]string{"kind"},
	)

	CompensatingDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_compensating_deletes_total",
			Help: "Best-effort deletes of media left behind by a failed operation",
		},
		[]string{"status"},
	)

	OrphanedAssetsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidtube_orphaned_assets_published_total",
			Help: "Orphaned assets reported to the cleanup queue",
		},
	)

	OrphanCleanupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_orphan_cleanup_total",
			Help: "Cleanup worker outcomes for orphaned assets",
		},
		[]string{"status"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	// Engagement Metrics
	LikeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_like_toggles_total",
			Help: "Like toggles by target kind and resulting action",
		},
		[]string{"kind", "action"},
	)

	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_subscription_changes_total",
			Help: "Subscriptions created and removed",
		},
		[]string{"action"},
	)

	AccountsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidtube_accounts_created_total",
			Help: "Total number of registered accounts",
		},
	)

	VideosPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidtube_videos_created_total",
			Help: "Total number of videos uploaded",
		},
	)

	// Queue Metrics
	CleanupQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidtube_cleanup_queue_depth",
			Help: "Orphaned assets waiting for the cleanup worker",
		},
	)

	DeadLetterQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidtube_cleanup_dlq_depth",
			Help: "Orphaned assets parked after exhausting their retries",
		},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRateLimited records a rejected request
func RecordRateLimited(limiter string) {
	RateLimitedTotal.WithLabelValues(limiter).Inc()
}

// RecordMediaUpload records an upload to the media store
func RecordMediaUpload(kind, status string, size int64) {
	MediaUploadsTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		MediaUploadSizeBytes.WithLabelValues(kind).Observe(float64(size))
	}
}

// RecordCompensatingDelete records the outcome of a cleanup delete
func RecordCompensatingDelete(success bool) {
	if success {
		CompensatingDeletesTotal.WithLabelValues("success").Inc()
	} else {
		CompensatingDeletesTotal.WithLabelValues("failed").Inc()
	}
}

// RecordOrphanCleanup records a cleanup worker outcome (deleted, retried, dead_lettered)
func RecordOrphanCleanup(status string) {
	OrphanCleanupTotal.WithLabelValues(status).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordLikeToggle records a like being added or removed
func RecordLikeToggle(kind string, liked bool) {
	action := "removed"
	if liked {
		action = "added"
	}
	LikeTogglesTotal.WithLabelValues(kind, action).Inc()
}

// RecordSubscription records a subscription change
func RecordSubscription(action string) {
	SubscriptionsTotal.WithLabelValues(action).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
