package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus collectors for the arena.
// 모든 메서드는 nil receiver 에서 no-op (METRICS_ENABLED=false).
type Registry struct {
	reg *prometheus.Registry

	StepDuration       *prometheus.HistogramVec
	OracleLookups      *prometheus.CounterVec
	PredictionsScored  *prometheus.CounterVec
	BatchesIngested    *prometheus.CounterVec
	ValidationWarnings *prometheus.CounterVec
	TradeEvents        *prometheus.CounterVec
	SimulatorBalance   prometheus.Gauge
}

// NewRegistry creates a registry with process and Go runtime collectors
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_step_duration_seconds",
				Help:    "Duration of each tournament step in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"step", "result"},
		),

		OracleLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_oracle_lookups_total",
				Help: "Outcome oracle lookups by source and result (hit, miss, cached)",
			},
			[]string{"source", "result"},
		),

		PredictionsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_predictions_scored_total",
				Help: "Score results written, by status",
			},
			[]string{"status"},
		),

		BatchesIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_batches_ingested_total",
				Help: "Forecast batches by forecaster and result (saved, skipped, failed, discarded)",
			},
			[]string{"forecaster", "result"},
		),

		ValidationWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_validation_violations_total",
				Help: "Validation violations logged per forecaster",
			},
			[]string{"forecaster"},
		),

		TradeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_trade_events_total",
				Help: "Paper trade transitions and rejections",
			},
			[]string{"event"},
		),

		SimulatorBalance: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arena_simulator_balance",
				Help: "Current paper account balance",
			},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.StepDuration,
		r.OracleLookups,
		r.PredictionsScored,
		r.BatchesIngested,
		r.ValidationWarnings,
		r.TradeEvents,
		r.SimulatorBalance,
	)
	return r
}

// Handler exposes the registry for /metrics
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry (tests)
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveStep records a step duration
func (r *Registry) ObserveStep(step string, start time.Time, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.StepDuration.WithLabelValues(step, result).Observe(time.Since(start).Seconds())
}

// OracleLookup counts an oracle answer
func (r *Registry) OracleLookup(source, result string) {
	if r == nil {
		return
	}
	r.OracleLookups.WithLabelValues(source, result).Inc()
}

// Scored counts a written score result
func (r *Registry) Scored(status string) {
	if r == nil {
		return
	}
	r.PredictionsScored.WithLabelValues(status).Inc()
}

// Ingested counts a batch outcome
func (r *Registry) Ingested(forecaster, result string) {
	if r == nil {
		return
	}
	r.BatchesIngested.WithLabelValues(forecaster, result).Inc()
}

// Violations adds logged validation violations
func (r *Registry) Violations(forecaster string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.ValidationWarnings.WithLabelValues(forecaster).Add(float64(n))
}

// Trade counts a simulator event and tracks the balance
func (r *Registry) Trade(event string, balance float64) {
	if r == nil {
		return
	}
	r.TradeEvents.WithLabelValues(event).Inc()
	r.SimulatorBalance.Set(balance)
}
