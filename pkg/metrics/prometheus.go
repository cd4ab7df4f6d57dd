package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	volumeRatio *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pumpscan_analyses_total",
				Help: "Total number of records classified",
			},
			[]string{"risk", "pattern"},
		),
		rejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pumpscan_records_rejected_total",
				Help: "Records rejected by validation before detection",
			},
			[]string{"source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pumpscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		volumeRatio: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pumpscan_last_volume_ratio",
				Help: "Volume ratio of the latest record for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pumpscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis counts one classified record.
func (r *Recorder) RecordAnalysis(risk, pattern string) {
	r.analyses.WithLabelValues(risk, pattern).Inc()
}

// RecordRejected counts a record that failed validation.
func (r *Recorder) RecordRejected(source string) {
	r.rejected.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordVolumeRatio records the latest volume ratio for a symbol.
func (r *Recorder) RecordVolumeRatio(symbol string, ratio float64) {
	r.volumeRatio.WithLabelValues(symbol).Set(ratio)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
