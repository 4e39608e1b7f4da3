package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Forward outcomes
const (
	OutcomeForwarded     = "forwarded"
	OutcomeNotConfigured = "not_configured"
	OutcomeFailed        = "failed"
)

// Action outcomes
const (
	ActionSucceeded = "succeeded"
	ActionFailed    = "failed"
)

// Metrics holds the prometheus instruments of the bridge.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ForwardsTotal    *prometheus.CounterVec
	WebhookLatency   *prometheus.HistogramVec
	ActionsTotal     *prometheus.CounterVec
	InFlightForwards prometheus.Gauge
	IgnoredTotal     *prometheus.CounterVec
}

// NewMetrics creates the bridge instruments and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ForwardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordbridge_forwards_total",
			Help: "Message events forwarded to the webhook, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		WebhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discordbridge_webhook_latency_seconds",
			Help:    "Round-trip time of webhook calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordbridge_response_actions_total",
			Help: "Discord actions performed on behalf of webhook responses.",
		}, []string{"action", "outcome"}),
		InFlightForwards: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "discordbridge_forwards_in_flight",
			Help: "Webhook forwards currently running.",
		}),
		IgnoredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordbridge_ignored_events_total",
			Help: "Message events dropped before forwarding, by event type.",
		}, []string{"event_type"}),
	}

	reg.MustRegister(m.ForwardsTotal, m.WebhookLatency, m.ActionsTotal, m.InFlightForwards, m.IgnoredTotal)
	return m
}

// RecordForward counts one finished forward
func (m *Metrics) RecordForward(eventType, outcome string) {
	if m == nil {
		return
	}
	m.ForwardsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordWebhookCall observes a webhook round trip. status is the HTTP status code or "error".
func (m *Metrics) RecordWebhookCall(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.WebhookLatency.WithLabelValues(status).Observe(elapsed.Seconds())
}

// RecordAction counts one dispatched response action
func (m *Metrics) RecordAction(action, outcome string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordIgnored counts an event dropped by the router, e.g. bot-authored messages
func (m *Metrics) RecordIgnored(eventType string) {
	if m == nil {
		return
	}
	m.IgnoredTotal.WithLabelValues(eventType).Inc()
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.InFlightForwards.Inc()
	return m.InFlightForwards.Dec
}
