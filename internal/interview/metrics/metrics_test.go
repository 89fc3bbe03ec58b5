package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncSessionStarted("Safe")
	m.ObserveEvidence("Full Conformity", 0.9)
	m.IncCategoryCompleted("Safe")
	m.IncRunStarted()
	m.IncAssessment("Low")
	m.SetOpenSessions(3)
	m.ObserveCommand("submit_evidence", time.Now(), nil)
	m.ObserveCommand("submit_evidence", time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("Safe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvidenceScored.WithLabelValues("Full Conformity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CategoriesCompleted.WithLabelValues("Safe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssessmentsGenerated.WithLabelValues("Low")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OpenSessions))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CommandDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSessionStarted("Safe")
		m.ObserveCommand("x", time.Now(), nil)
		m.SetOpenSessions(1)
	})
}
