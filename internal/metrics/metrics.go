package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habithub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	AlarmsRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habithub_alarms_raised_total",
			Help: "Total number of alarms that started ringing",
		},
	)

	AlarmsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habithub_alarms_resolved_total",
			Help: "Total number of alarms resolved",
		},
		[]string{"outcome"}, // completed, missed
	)

	LedgerWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habithub_ledger_writes_total",
			Help: "Activity ledger write attempts",
		},
		[]string{"result"}, // inserted, duplicate
	)

	PlaybackFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habithub_playback_failures_total",
			Help: "Alarm sounds that failed to play",
		},
	)

	SyncOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habithub_sync_operations_total",
			Help: "Remote profile store calls",
		},
		[]string{"operation", "status"}, // status: success, failed
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habithub_sync_duration_seconds",
			Help:    "Remote profile store call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"operation"},
	)
)

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordSync(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	SyncOperations.WithLabelValues(operation, status).Inc()
	SyncDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
