package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"ecomcli/internal/normalize"
)

// Metrics exposes pipeline counters to Prometheus.
type Metrics struct {
	rowsLoaded      *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec
	fieldsDefaulted *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	runs            *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecom_rows_loaded_total",
			Help: "Raw rows seen by the normalizer, per entity.",
		}, []string{"entity"}),
		rowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecom_rows_rejected_total",
			Help: "Raw rows rejected for a missing required key field, per entity.",
		}, []string{"entity"}),
		fieldsDefaulted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecom_fields_defaulted_total",
			Help: "Fields resolved to a sentinel or default during coercion, per entity.",
		}, []string{"entity"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecom_step_duration_seconds",
			Help:    "Duration of each pipeline step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecom_runs_total",
			Help: "Completed batch runs by outcome.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.rowsLoaded, m.rowsRejected, m.fieldsDefaulted, m.stepDuration, m.runs)
	}
	return m
}

// ObserveNormalization records one entity's normalization stats.
func (m *Metrics) ObserveNormalization(st normalize.Stats) {
	entity := string(st.Entity)
	m.rowsLoaded.WithLabelValues(entity).Add(float64(st.Total))
	m.rowsRejected.WithLabelValues(entity).Add(float64(st.Rejected))
	m.fieldsDefaulted.WithLabelValues(entity).Add(float64(st.Defaulted))
}

// ObserveStep records one step's duration.
func (m *Metrics) ObserveStep(step string, seconds float64) {
	m.stepDuration.WithLabelValues(step).Observe(seconds)
}

// ObserveRun records a run outcome ("success" or "failure").
func (m *Metrics) ObserveRun(status string) {
	m.runs.WithLabelValues(status).Inc()
}
