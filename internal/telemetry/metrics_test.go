package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func testMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()

	// Fresh registry to avoid polluting the default one across tests
	reg := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_nutrigate_request_total",
		Help: "Test counter",
	}, []string{"endpoint", "status"})

	durationMs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_nutrigate_request_duration_ms",
		Help:    "Test histogram",
		Buckets: []float64{100, 500, 1000},
	}, []string{"endpoint"})

	tokensTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_nutrigate_tokens_total",
		Help: "Test counter",
	}, []string{"endpoint", "direction"})

	filterTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_nutrigate_filter_action_total",
		Help: "Test counter",
	}, []string{"filter", "action"})

	authTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_nutrigate_auth_total",
		Help: "Test counter",
	}, []string{"result"})

	reg.MustRegister(requestTotal, durationMs, tokensTotal, filterTotal, authTotal)

	return &Metrics{
		RequestTotal:      requestTotal,
		RequestDurationMs: durationMs,
		TokensTotal:       tokensTotal,
		FilterActionTotal: filterTotal,
		AuthTotal:         authTotal,
	}, reg
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	counter.Write(&metric)
	return *metric.Counter.Value
}

func TestRecordRequest(t *testing.T) {
	m, _ := testMetrics(t)

	m.RecordRequest(RequestLabels{
		Endpoint:         "analyze-meal",
		Status:           "200",
		DurationMs:       150,
		PromptTokens:     120,
		CompletionTokens: 80,
	})

	if got := counterValue(t, m.RequestTotal, "analyze-meal", "200"); got != 1 {
		t.Errorf("expected request count 1, got %v", got)
	}
	if got := counterValue(t, m.TokensTotal, "analyze-meal", "prompt"); got != 120 {
		t.Errorf("expected 120 prompt tokens, got %v", got)
	}
	if got := counterValue(t, m.TokensTotal, "analyze-meal", "completion"); got != 80 {
		t.Errorf("expected 80 completion tokens, got %v", got)
	}
}

func TestRecordRequest_NoTokens(t *testing.T) {
	m, _ := testMetrics(t)

	m.RecordRequest(RequestLabels{Endpoint: "recommendations", Status: "502"})

	if got := counterValue(t, m.RequestTotal, "recommendations", "502"); got != 1 {
		t.Errorf("expected request count 1, got %v", got)
	}
	if got := counterValue(t, m.TokensTotal, "recommendations", "prompt"); got != 0 {
		t.Errorf("expected no prompt tokens recorded, got %v", got)
	}
}

func TestRecordFilterAction(t *testing.T) {
	m, _ := testMetrics(t)

	m.RecordFilterAction("injection", "block")

	if got := counterValue(t, m.FilterActionTotal, "injection", "block"); got != 1 {
		t.Errorf("expected filter action count 1, got %v", got)
	}
}

func TestRecordAuth(t *testing.T) {
	m, _ := testMetrics(t)

	m.RecordAuth("invalid")
	m.RecordAuth("invalid")
	m.RecordAuth("ok")

	if got := counterValue(t, m.AuthTotal, "invalid"); got != 2 {
		t.Errorf("expected 2 invalid auth outcomes, got %v", got)
	}
	if got := counterValue(t, m.AuthTotal, "ok"); got != 1 {
		t.Errorf("expected 1 ok auth outcome, got %v", got)
	}
}
