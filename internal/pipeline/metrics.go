package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the batch counters exposed on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
	running  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newscard_category_outcomes_total",
			Help: "Category attempts by outcome (published, skipped, failed).",
		}, []string{"category", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newscard_batch_duration_seconds",
			Help:    "Wall time of one full batch run.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newscard_batch_running",
			Help: "1 while a batch run is in progress.",
		}),
	}
	reg.MustRegister(m.outcomes, m.duration, m.running)
	return m
}

func (m *Metrics) observeOutcome(category string, outcome Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(category, string(outcome)).Inc()
}

func (m *Metrics) batchStarted() {
	if m == nil {
		return
	}
	m.running.Set(1)
}

func (m *Metrics) batchFinished(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.running.Set(0)
	m.duration.Observe(elapsed.Seconds())
}
