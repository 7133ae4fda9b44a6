package metrics

import (
	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal *prometheus.CounterVec
	published    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	confidence   *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_signals_generated_total",
				Help: "Total number of trading signals generated and persisted",
			},
			[]string{"symbol", "type"},
		),
		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_signals_published_total",
				Help: "Total number of signals handed to downstream sinks",
			},
			[]string{"sink"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		confidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsignal_signal_confidence",
				Help: "Confidence of the last signal generated for a symbol and timeframe",
			},
			[]string{"symbol", "timeframe"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal records a persisted signal.
func (r *Recorder) RecordSignal(symbol string, signalType models.SignalType, timeframe string, confidence float64) {
	r.signalsTotal.WithLabelValues(symbol, string(signalType)).Inc()
	r.confidence.WithLabelValues(symbol, timeframe).Set(confidence)
}

// RecordPublished records a signal delivered to a sink.
func (r *Recorder) RecordPublished(sink string) {
	r.published.WithLabelValues(sink).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ domrepo.Metrics = (*Recorder)(nil)
