package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "equipbook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	lockFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_lock_fallbacks_total",
			Help:      "Times the distributed booking lock degraded to the in-process lock.",
		},
	)

	sheetsSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_sync_total",
			Help:      "Usage sheet sync attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingOutcomes, lockFallbacks, sheetsSyncs)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route, code string, seconds float64) {
	httpRequests.WithLabelValues(route, code).Inc()
	httpDuration.WithLabelValues(route).Observe(seconds)
}

// IncBooking counts a booking mutation outcome (ok, conflict, not_found, ...).
func IncBooking(operation, outcome string) {
	bookingOutcomes.WithLabelValues(operation, outcome).Inc()
}

func IncLockFallback() {
	lockFallbacks.Inc()
}

func IncSheetsSync(result string) {
	sheetsSyncs.WithLabelValues(result).Inc()
}
