package metrics

import "github.com/prometheus/client_golang/prometheus"

// Operational counters for the call-wake dispatcher. Aggregates only;
// nothing here ever carries a token or identity label.
var (
	CallNotifyTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_call_notify_total",
			Help: "Total call-notify webhooks received",
		},
	)

	CallNotifyInvalidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_call_notify_invalid_total",
			Help: "Call-notify webhooks rejected for malformed input",
		},
	)

	PushSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_sent_total",
			Help: "Wake pushes accepted by a push service",
		},
	)

	PushSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_skipped_total",
			Help: "Registrations skipped because their platform is not configured",
		},
	)

	PushFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_failed_total",
			Help: "Sends that hit a transient push service error",
		},
	)

	PushRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_removed_total",
			Help: "Registrations dropped after a permanent token rejection",
		},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "push_dispatch_duration_seconds",
			Help:    "Duration of one call-notify fan-out",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		CallNotifyTotal,
		CallNotifyInvalidTotal,
		PushSentTotal,
		PushSkippedTotal,
		PushFailedTotal,
		PushRemovedTotal,
		DispatchDuration,
	)
}
