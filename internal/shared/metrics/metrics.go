package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcomes recorded by the ride workflow.
const (
	OutcomeAccepted   = "accepted"
	OutcomeDenied     = "denied"
	OutcomeFull       = "full"
	OutcomeOverbooked = "overbooked"
	OutcomeCancelled  = "cancelled"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusride_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campusride_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusride_bookings_total",
			Help: "Booking workflow outcomes",
		},
		[]string{"outcome"},
	)

	RatingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campusride_ratings_total",
			Help: "Ratings submitted",
		},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusride_realtime_subscribers",
			Help: "Open realtime subscriptions",
		},
	)
)
