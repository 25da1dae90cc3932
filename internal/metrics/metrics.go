package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remindria_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remindria_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatTurnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remindria_chat_turns_total",
			Help: "Total number of conversation turns processed.",
		},
	)

	IntentBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remindria_intent_batches_total",
			Help: "Intent extraction results by outcome (actions, none, rejected).",
		},
		[]string{"outcome"},
	)

	ScheduleActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remindria_schedule_actions_total",
			Help: "Schedule actions executed by kind and status.",
		},
		[]string{"kind", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remindria_completion_request_duration_seconds",
			Help:    "Completion service request duration in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	MemoryCompressionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remindria_memory_compressions_total",
			Help: "Conversation window compressions by status.",
		},
		[]string{"status"},
	)

	RemindersDueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remindria_reminders_due_total",
			Help: "Total number of due reminders dispatched by the notifier.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatTurnsTotal,
		IntentBatchesTotal,
		ScheduleActionsTotal,
		CompletionRequestDuration,
		MemoryCompressionsTotal,
		RemindersDueTotal,
	)
}
