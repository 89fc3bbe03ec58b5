package models

import (
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/scoring"
	id "rmfaudit/pkg/domain"
)

// ConformityCounts is a histogram of evaluation outcomes.
type ConformityCounts struct {
	Full    int `json:"full_conformity"`
	Partial int `json:"partial_conformity"`
	None    int `json:"no_conformity"`
}

func (c *ConformityCounts) Add(conformity scoring.Conformity) {
	switch conformity {
	case scoring.ConformityFull:
		c.Full++
	case scoring.ConformityPartial:
		c.Partial++
	default:
		c.None++
	}
}

func (c *ConformityCounts) Merge(other ConformityCounts) {
	c.Full += other.Full
	c.Partial += other.Partial
	c.None += other.None
}

func (c ConformityCounts) Total() int {
	return c.Full + c.Partial + c.None
}

// Summary is the per-session view consumed by the assessment.
type Summary struct {
	SessionID        id.SessionID         `json:"session_id"`
	Category         category.Category    `json:"category"`
	State            State                `json:"state"`
	TotalQuestions   int                  `json:"total_questions"`
	ConformityCounts ConformityCounts     `json:"conformity_counts"`
	AverageScore     float64              `json:"average_score"`
	CompletionRate   float64              `json:"completion_rate"`
	Observations     []Observation        `json:"observations"`
	Evaluations      []EvidenceEvaluation `json:"evaluations"`
	StartedAt        time.Time            `json:"started_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

func (s *AuditSession) Summary() Summary {
	cp := s.Clone()
	sum := Summary{
		SessionID:      cp.ID,
		Category:       cp.Category,
		State:          cp.State,
		TotalQuestions: len(cp.Questions),
		Observations:   cp.Observations,
		Evaluations:    cp.Evaluations,
		StartedAt:      cp.StartedAt,
		CompletedAt:    cp.CompletedAt,
	}
	var total float64
	for _, e := range cp.Evaluations {
		sum.ConformityCounts.Add(e.Conformity)
		total += e.Score
	}
	if n := len(cp.Evaluations); n > 0 {
		sum.AverageScore = total / float64(n)
	}
	if sum.TotalQuestions > 0 {
		sum.CompletionRate = float64(len(cp.Evaluations)) / float64(sum.TotalQuestions) * 100
	}
	return sum
}
