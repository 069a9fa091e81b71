// Package metrics provides Prometheus metrics for monitoring the
// notetaker service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// webhookEventsTotal records the number of provider webhook events
	// received, by event type and processing outcome.
	// Labels:
	//   - type: Provider event type (e.g., "transcript.sentence", "meeting.ended")
	//   - outcome: Processing outcome (e.g., "applied", "ignored", "rejected", "error")
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of provider webhook events received",
		},
		[]string{"type", "outcome"},
	)

	// botDispatchTotal records outbound calls to the meeting-bot provider.
	// Labels:
	//   - operation: "create" or "delete"
	//   - status: "success" or "failed"
	botDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_dispatch_requests_total",
			Help: "Total number of bot provider dispatch requests",
		},
		[]string{"operation", "status"},
	)

	// summarizationDuration records LLM summarization call durations.
	// Labels:
	//   - status: "success" or "failed"
	// Buckets cover quick rejections through long model calls.
	summarizationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Duration of LLM summarization calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	// summarizationRetriesTotal records summarization job retry attempts.
	summarizationRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "summarization_retries_total",
			Help: "Total number of summarization job retries",
		},
	)
)

func init() {
	prometheus.MustRegister(webhookEventsTotal)
	prometheus.MustRegister(botDispatchTotal)
	prometheus.MustRegister(summarizationDuration)
	prometheus.MustRegister(summarizationRetriesTotal)
}

// RecordWebhookEvent records one received provider event.
func RecordWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordBotDispatch records one outbound bot provider call.
func RecordBotDispatch(operation, status string) {
	botDispatchTotal.WithLabelValues(operation, status).Inc()
}

// RecordSummarizationDuration records the duration of one LLM call.
func RecordSummarizationDuration(status string, durationSeconds float64) {
	summarizationDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordSummarizationRetry records one summarization retry attempt.
func RecordSummarizationRetry() {
	summarizationRetriesTotal.Inc()
}
