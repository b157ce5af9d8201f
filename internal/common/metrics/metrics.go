// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_store_operations_total",
			Help: "Total number of store operations by outcome",
		},
		[]string{"store", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "jobportal_store_operation_duration_seconds",
			Help: "Duration of store operations in seconds",
		},
		[]string{"store", "operation"},
	)

	StaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_stale_responses_total",
			Help: "Responses discarded because a newer request already completed",
		},
		[]string{"operation"},
	)

	DisplayedJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobportal_displayed_jobs",
			Help: "Number of jobs in the displayed set",
		},
	)
)

// Observe records one store operation. status is "success" or an error code.
func Observe(store, operation, status string, start time.Time) {
	StoreOperations.WithLabelValues(store, operation, status).Inc()
	StoreOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}
