package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts quotes, split/merge plans and applied moves.
type EngineMetrics struct {
	quotes       *prometheus.CounterVec
	plans        *prometheus.CounterVec
	planFailures *prometheus.CounterVec
	movesApplied *prometheus.CounterVec
	planDuration *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on reg. A nil registerer
// yields a no-op recorder.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_quotes_total",
		Help: "Computed quotes by source.",
	}, []string{"source"})
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_plans_total",
		Help: "Built split and merge plans.",
	}, []string{"kind"})
	planFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_plan_failures_total",
		Help: "Rejected split and merge plans by reason.",
	}, []string{"kind", "reason"})
	movesApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tickets_moves_applied_total",
		Help: "Move operations committed to the store.",
	}, []string{"kind"})
	planDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tickets_plan_duration_seconds",
		Help:    "Time spent building a plan, loading included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(quotes, plans, planFailures, movesApplied, planDuration)
	return &EngineMetrics{
		quotes:       quotes,
		plans:        plans,
		planFailures: planFailures,
		movesApplied: movesApplied,
		planDuration: planDuration,
	}
}

func (m *EngineMetrics) IncQuote(source string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *EngineMetrics) IncPlan(kind string) {
	if m == nil || m.plans == nil {
		return
	}
	m.plans.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *EngineMetrics) IncPlanFailure(kind, reason string) {
	if m == nil || m.planFailures == nil {
		return
	}
	m.planFailures.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

func (m *EngineMetrics) AddMovesApplied(kind string, n int) {
	if m == nil || m.movesApplied == nil || n <= 0 {
		return
	}
	m.movesApplied.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

func (m *EngineMetrics) ObservePlanDuration(kind string, d time.Duration) {
	if m == nil || m.planDuration == nil {
		return
	}
	m.planDuration.WithLabelValues(normalizeLabel(kind)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
