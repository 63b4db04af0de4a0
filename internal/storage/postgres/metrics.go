package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "likewatch_store_query_duration_seconds",
			Help:    "Duration of event store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	queryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "likewatch_store_query_errors_total",
			Help: "Total number of event store query errors",
		},
		[]string{"operation"},
	)
)

// observe records one store query:
//
//	defer observe("count_events", time.Now(), &err)
func observe(operation string, started time.Time, errp *error) {
	queryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if *errp != nil {
		queryErrors.WithLabelValues(operation).Inc()
	}
}
