package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions     *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	FallbackInUse prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_ratelimit_decisions_total",
			Help: "Rate limit checks by caller kind and outcome",
		}, []string{"kind", "outcome"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rmfaudit_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed against the primary store",
		}),
		FallbackInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rmfaudit_ratelimit_fallback_active",
			Help: "1 while rate limiting runs on the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncDecision(kind string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncStoreError() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

func (m *Metrics) SetFallback(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackInUse.Set(1)
		return
	}
	m.FallbackInUse.Set(0)
}
