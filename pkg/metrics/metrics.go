package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts notification records created, by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentlink_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	// UnreadCountLookups counts unread-count reads by cache outcome (hit|miss).
	UnreadCountLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentlink_unread_count_lookups_total",
			Help: "Unread-count lookups by cache outcome",
		},
		[]string{"outcome"},
	)

	// NotificationsCleaned counts records removed by the retention job.
	NotificationsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talentlink_notifications_cleaned_total",
			Help: "Total number of notifications removed by cleanup",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talentlink_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
