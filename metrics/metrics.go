package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	BackendCalls       *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	RecordsAppended    prometheus.Counter
}

// New creates a registry and registers all Prometheus metrics on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BackendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_backend_calls_total",
			Help: "Extraction backend invocations by model and outcome",
		}, []string{"model", "status"}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_extraction_duration_seconds",
			Help:    "End-to-end duration of one extraction request",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "kyc_records_appended_total",
			Help: "Total number of records committed to the store",
		}),
	}
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBackendCall records one backend invocation outcome.
func (m *Metrics) ObserveBackendCall(model, status string) {
	m.BackendCalls.WithLabelValues(model, status).Inc()
}

// IncrementRecordsAppended increments the appended records counter by 1.
func (m *Metrics) IncrementRecordsAppended() {
	m.RecordsAppended.Inc()
}
