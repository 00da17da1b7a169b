package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counters
	PollFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobwatch_poll_fetches_total",
			Help: "Total number of job list fetches issued by pollers",
		},
		[]string{"view", "result"}, // result: success, error
	)

	PollStaleDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobwatch_poll_stale_discarded_total",
			Help: "Responses discarded because a newer fetch had already settled",
		},
		[]string{"view"},
	)

	TransitionsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobwatch_transitions_published_total",
			Help: "Job status transitions published to the message broker",
		},
		[]string{"to_status", "success"},
	)

	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobwatch_events_processed_total",
			Help: "Transition events handled by the event worker",
		},
		[]string{"result"}, // stored, duplicate, invalid, retry
	)

	// Gauges
	JobsByCategory = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobwatch_jobs",
			Help: "Jobs in the last successful poll, by status category",
		},
		[]string{"view", "category"},
	)

	// Histograms
	PollFetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobwatch_poll_fetch_duration_seconds",
			Help:    "Job list fetch latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"view"},
	)
)
