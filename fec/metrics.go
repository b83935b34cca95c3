package fec

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by decoders and encoders.
// A nil *Metrics disables instrumentation.
type Metrics struct {
	decodes    *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	encodes    prometheus.Counter
}

// NewMetrics creates the LDPC collectors and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		decodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ldpc_decodes_total",
				Help: "Decoded frames by implementation and result",
			},
			[]string{"implementation", "result"},
		),
		iterations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ldpc_decode_iterations",
				Help:    "Iterations used per decoded frame",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"implementation"},
		),
		encodes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "ldpc_encodes_total",
				Help: "Encoded information words",
			},
		),
	}
}

func (m *Metrics) observeDecode(impl Implementation, iterations int, err error) {
	if m == nil {
		return
	}
	result := "converged"
	exhausted := errors.Is(err, ErrDecodeFailure)
	switch {
	case exhausted:
		result = "exhausted"
	case err != nil:
		result = "error"
	}
	m.decodes.WithLabelValues(impl.String(), result).Inc()
	if err == nil || exhausted {
		m.iterations.WithLabelValues(impl.String()).Observe(float64(iterations))
	}
}

func (m *Metrics) observeEncode() {
	if m == nil {
		return
	}
	m.encodes.Inc()
}
