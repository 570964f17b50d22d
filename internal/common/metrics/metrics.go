package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esign_documents_created_total",
			Help: "Total number of e-signature documents created with the provider",
		},
	)

	DocumentSendsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esign_document_sends_skipped_total",
			Help: "Total number of document sends soft-skipped by the provider sandbox restriction",
		},
	)

	DocumentPollAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esign_document_poll_attempts_total",
			Help: "Total number of document readiness poll requests",
		},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esign_webhook_events_total",
			Help: "Total number of webhook events processed by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esign_notifications_sent_total",
			Help: "Total number of notification emails sent by kind",
		},
		[]string{"kind"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"path", "method", "status"},
	)
)
