// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	appointmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_appointments_created_total",
			Help: "Appointments written, by booking flow and specialty category",
		},
		[]string{"flow", "category"},
	)

	bookingRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_booking_rejections_total",
			Help: "Bookings refused by the engine, by error code",
		},
		[]string{"code"},
	)

	bulkCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenda_bulk_candidates",
			Help:    "Candidate slots generated per bulk request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_status_transitions_total",
			Help: "Appointment status changes",
		},
		[]string{"from", "to"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_notifications_total",
			Help: "Side-effect tasks processed by the dispatcher",
		},
		[]string{"kind", "result"},
	)

	notificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_notification_queue_depth",
			Help: "Tasks waiting in the notification queue",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		appointmentsCreated,
		bookingRejections,
		bulkCandidates,
		statusTransitions,
		notificationsTotal,
		notificationQueueDepth,
	)
}

func ObserveHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func AppointmentsCreated(flow, category string, count int) {
	if count <= 0 {
		return
	}
	appointmentsCreated.WithLabelValues(flow, category).Add(float64(count))
}

func BookingRejected(code string) {
	bookingRejections.WithLabelValues(code).Inc()
}

func BulkCandidates(count int) {
	bulkCandidates.Observe(float64(count))
}

func StatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func NotificationProcessed(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

func NotificationDropped(kind string) {
	notificationsTotal.WithLabelValues(kind, "dropped").Inc()
}

func SetNotificationQueueDepth(depth int) {
	notificationQueueDepth.Set(float64(depth))
}
