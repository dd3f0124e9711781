package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the nutrition gateway.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	TokensTotal       *prometheus.CounterVec
	FilterActionTotal *prometheus.CounterVec
	AuthTotal         *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrigate_request_total",
			Help: "Total number of requests processed by the gateway.",
		}, []string{"endpoint", "status"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nutrigate_request_duration_ms",
			Help:    "Total request duration in milliseconds (including inference latency).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"endpoint"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrigate_tokens_total",
			Help: "Total tokens reported by the inference provider.",
		}, []string{"endpoint", "direction"}),

		FilterActionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrigate_filter_action_total",
			Help: "Total filter actions taken.",
		}, []string{"filter", "action"}),

		AuthTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrigate_auth_total",
			Help: "Identity verification outcomes.",
		}, []string{"result"}),
	}
}

// RequestLabels holds the label values for recording a completed request.
type RequestLabels struct {
	Endpoint         string
	Status           string
	DurationMs       float64
	PromptTokens     int
	CompletionTokens int
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(labels.Endpoint, labels.Status).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Endpoint).Observe(labels.DurationMs)

	if labels.PromptTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Endpoint, "prompt").Add(float64(labels.PromptTokens))
	}
	if labels.CompletionTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Endpoint, "completion").Add(float64(labels.CompletionTokens))
	}
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

// RecordAuth records an identity verification outcome ("ok", "missing", "invalid").
func (m *Metrics) RecordAuth(result string) {
	m.AuthTotal.WithLabelValues(result).Inc()
}
