package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the interview module.
type Metrics struct {
	SessionsStarted      *prometheus.CounterVec
	EvidenceScored       *prometheus.CounterVec
	EvidenceScore        prometheus.Histogram
	CategoriesCompleted  *prometheus.CounterVec
	RunsStarted          prometheus.Counter
	AssessmentsGenerated *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
	OpenSessions         prometheus.Gauge
}

// New registers the interview collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_sessions_started_total",
			Help: "Audit sessions created, by category",
		}, []string{"category"}),
		EvidenceScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_evidence_scored_total",
			Help: "Evidence submissions scored, by conformity",
		}, []string{"conformity"}),
		EvidenceScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rmfaudit_evidence_score",
			Help:    "Distribution of evidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		CategoriesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_categories_completed_total",
			Help: "Audit sessions completed, by category",
		}, []string{"category"}),
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rmfaudit_runs_started_total",
			Help: "Multi-category audits started",
		}),
		AssessmentsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rmfaudit_assessments_generated_total",
			Help: "Assessments generated, by risk level",
		}, []string{"risk_level"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmfaudit_command_duration_seconds",
			Help:    "Duration of interview commands",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"command", "outcome"}),
		OpenSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rmfaudit_open_sessions",
			Help: "Audit sessions not yet completed",
		}),
	}
}

// ObserveCommand records a command duration. Call with time.Now() at the start.
func (m *Metrics) ObserveCommand(command string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CommandDuration.WithLabelValues(command, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSessionStarted(category string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveEvidence(conformity string, score float64) {
	if m == nil {
		return
	}
	m.EvidenceScored.WithLabelValues(conformity).Inc()
	m.EvidenceScore.Observe(score)
}

func (m *Metrics) IncCategoryCompleted(category string) {
	if m == nil {
		return
	}
	m.CategoriesCompleted.WithLabelValues(category).Inc()
}

func (m *Metrics) IncRunStarted() {
	if m == nil {
		return
	}
	m.RunsStarted.Inc()
}

func (m *Metrics) IncAssessment(riskLevel string) {
	if m == nil {
		return
	}
	m.AssessmentsGenerated.WithLabelValues(riskLevel).Inc()
}

func (m *Metrics) SetOpenSessions(n int) {
	if m == nil {
		return
	}
	m.OpenSessions.Set(float64(n))
}
