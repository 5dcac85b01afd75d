package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Auth
	LoginAttempts *prometheus.CounterVec

	// Domain events
	EventsPublished *prometheus.CounterVec
	EventsConsumed  *prometheus.CounterVec

	// Attachments
	AttachmentUploads *prometheus.CounterVec
	AttachmentBytes   prometheus.Counter

	// Reminder worker
	RemindersSent    prometheus.Counter
	RemindersFailed  prometheus.Counter
	ReminderRunDelay prometheus.Histogram
}

// New creates all application metrics and registers them with reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by result",
		}, []string{"result"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events handed to the broker",
		}, []string{"type", "status"}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Total number of domain events read back by the activity log",
		}, []string{"type"}),

		AttachmentUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_uploads_total",
			Help:      "Total number of embedded attachments moved to object storage",
		}, []string{"status"}),
		AttachmentBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_bytes_total",
			Help:      "Total attachment bytes written to object storage",
		}),

		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Total number of appointment reminders sent",
		}),
		RemindersFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Total number of appointment reminders that could not be sent",
		}),
		ReminderRunDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_run_duration_seconds",
			Help:      "Time spent on one reminder sweep",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}
