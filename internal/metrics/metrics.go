package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_engine",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	searchesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_engine",
			Name:      "searches_issued_total",
			Help:      "Search requests that reached the boundary, by slot.",
		},
		[]string{"slot"},
	)

	searchesSuperseded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_engine",
			Name:      "searches_superseded_total",
			Help:      "Search requests cancelled or dropped as stale, by slot.",
		},
		[]string{"slot"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_engine",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, searchesIssued, searchesSuperseded, submissions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSearchIssued counts a search that actually went out.
func IncSearchIssued(slot string) {
	searchesIssued.WithLabelValues(slot).Inc()
}

// IncSearchSuperseded counts a search aborted or discarded as stale.
func IncSearchSuperseded(slot string) {
	searchesSuperseded.WithLabelValues(slot).Inc()
}

// IncSubmission counts a booking submission outcome.
func IncSubmission(status string) {
	submissions.WithLabelValues(status).Inc()
}
