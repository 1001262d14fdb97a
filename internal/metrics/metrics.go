package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "danceslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_bookings_total",
			Help: "Total number of submitted bookings",
		},
		[]string{"source"},
	)

	BookingRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_booking_rejections_total",
			Help: "Booking submissions rejected before persisting",
		},
		[]string{"reason"},
	)

	BookingStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_booking_status_changes_total",
			Help: "Total number of admin booking status changes",
		},
		[]string{"status"},
	)

	SessionMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_session_mutations_total",
			Help: "Total number of override session mutations",
		},
		[]string{"action"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_availability_resolutions_total",
			Help: "Availability resolutions by outcome and slot source",
		},
		[]string{"status", "source"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_notifications_total",
			Help: "Total number of lead notifications processed",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "danceslot_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)

	RealtimeSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "danceslot_realtime_subscribers",
			Help: "Number of change subscribers per table",
		},
		[]string{"table"},
	)

	BoardRollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_board_rollbacks_total",
			Help: "Optimistic admin board updates reverted after a store failure",
		},
		[]string{"operation"},
	)

	AccountEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danceslot_account_events_total",
			Help: "Registrations, logins and profile updates of dancer accounts",
		},
		[]string{"event"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(source string) {
	BookingsTotal.WithLabelValues(source).Inc()
}

func RecordBookingRejection(reason string) {
	BookingRejectionsTotal.WithLabelValues(reason).Inc()
}

func RecordStatusChange(status string) {
	BookingStatusChangesTotal.WithLabelValues(status).Inc()
}

func RecordSessionMutation(action string) {
	SessionMutationsTotal.WithLabelValues(action).Inc()
}

func RecordResolution(status, source string) {
	ResolutionsTotal.WithLabelValues(status, source).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}

func RecordBoardRollback(operation string) {
	BoardRollbacksTotal.WithLabelValues(operation).Inc()
}

func RecordAccountEvent(event string) {
	AccountEventsTotal.WithLabelValues(event).Inc()
}
