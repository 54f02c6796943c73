// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// InboundMessagesTotal tracks inbound chat messages by routing outcome.
	InboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_inbound_messages_total",
			Help: "Inbound chat messages by routing outcome",
		},
		[]string{"outcome"},
	)

	// IntentsTotal tracks classified top-level intents by source.
	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_intents_total",
			Help: "Classified top-level intents",
		},
		[]string{"intent", "source"},
	)

	// OracleCallsTotal tracks classification oracle calls.
	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_oracle_calls_total",
			Help: "Classification oracle calls by purpose and status",
		},
		[]string{"purpose", "status"},
	)

	// OracleCallDuration tracks classification oracle call duration.
	OracleCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_oracle_call_duration_seconds",
			Help:    "Classification oracle call duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 3, 5, 8, 13},
		},
		[]string{"purpose"},
	)

	// DispatchesTotal tracks tickets dispatched by area.
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_dispatches_total",
			Help: "Tickets dispatched",
		},
		[]string{"area"},
	)

	// StatusTransitionsTotal tracks lifecycle transitions.
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_status_transitions_total",
			Help: "Ticket status transitions",
		},
		[]string{"from", "to", "rule"},
	)

	// RepromptsTotal tracks re-prompts issued by mode.
	RepromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_reprompts_total",
			Help: "Re-prompts issued on unrecognized input",
		},
		[]string{"mode"},
	)

	// SessionsActive tracks sessions not in neutral mode.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_sessions_active",
			Help: "Sessions with a draft in progress",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordOracleCall records one classification oracle call.
func RecordOracleCall(purpose, status string, duration float64) {
	OracleCallsTotal.WithLabelValues(purpose, status).Inc()
	OracleCallDuration.WithLabelValues(purpose).Observe(duration)
}

// RecordTransition records one lifecycle transition.
func RecordTransition(from, to, rule string) {
	StatusTransitionsTotal.WithLabelValues(from, to, rule).Inc()
}
