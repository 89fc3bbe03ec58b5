package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers question bank loads, the cache in front of them and the
// breaker guarding them.
type Metrics struct {
	LoadDuration *prometheus.HistogramVec
	LoadFailures *prometheus.CounterVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	BreakerOpen  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmfaudit_question_bank_load_duration_seconds",
			Help:    "Duration of question bank loads by outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
		LoadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_question_bank_load_failures_total",
			Help: "Question bank loads that failed, by reason",
		}, []string{"reason"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rmfaudit_question_bank_cache_hits_total",
			Help: "Question bank loads served from Redis",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "rmfaudit_question_bank_cache_misses_total",
			Help: "Question bank loads that went to the source",
		}),
		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rmfaudit_question_bank_breaker_open",
			Help: "1 while the question bank circuit breaker is open",
		}),
	}
}

// ObserveLoad records a load duration. Call with time.Now() at the start.
func (m *Metrics) ObserveLoad(start time.Time, outcome string) {
	if m == nil {
		return
	}
	m.LoadDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncFailure(reason string) {
	if m == nil {
		return
	}
	m.LoadFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
