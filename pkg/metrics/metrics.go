package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageMoves counts application stage transitions by outcome (success|rejected|conflict).
	StageMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recluta_stage_moves_total",
			Help: "Total number of application stage move attempts",
		},
		[]string{"result"},
	)

	// InterviewTransitions counts interview state machine events by event name and outcome.
	InterviewTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recluta_interview_transitions_total",
			Help: "Total number of interview lifecycle transitions",
		},
		[]string{"event", "result"},
	)

	// NotificationsDispatched counts notification rows written per event type.
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recluta_notifications_dispatched_total",
			Help: "Total number of notifications fanned out to recipients",
		},
		[]string{"type"},
	)

	// NotificationsFailed counts notification deliveries that were logged and swallowed.
	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recluta_notifications_failed_total",
			Help: "Total number of notification deliveries that failed",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recluta_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
