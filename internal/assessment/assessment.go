// Package assessment turns a user's completed audit sessions into a
// compliance report.
package assessment

import (
	"fmt"
	"math"
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

const (
	fullWeight    = 100.0
	partialWeight = 70.0

	lowRiskScore    = 75.0
	mediumRiskScore = 50.0

	strengthFullPct = 60.0
)

// riskBands are checked highest first; the first match wins.
var riskBands = []struct {
	minNoPct float64
	priority Priority
}{
	{70, PriorityHigh},
	{50, PriorityMedium},
	{30, PriorityLow},
}

// CategorySummary merges every completed session of one category.
type CategorySummary struct {
	Category          category.Category       `json:"category"`
	Sessions          int                     `json:"sessions"`
	TotalQuestions    int                     `json:"total_questions"`
	Evaluations       int                     `json:"evaluations"`
	ConformityCounts  models.ConformityCounts `json:"conformity_counts"`
	AverageScore      float64                 `json:"average_score"`
	CompletionRate    float64                 `json:"completion_rate"`
	NoConformityPct   float64                 `json:"no_conformity_pct"`
	FullConformityPct float64                 `json:"full_conformity_pct"`
	LastCompletedAt   *time.Time              `json:"last_completed_at,omitempty"`

	scoreSum float64
}

type RiskArea struct {
	Category        category.Category `json:"category"`
	Priority        Priority          `json:"priority"`
	NoConformityPct float64           `json:"no_conformity_pct"`
	Reason          string            `json:"reason"`
}

type Strength struct {
	Category          category.Category `json:"category"`
	FullConformityPct float64           `json:"full_conformity_pct"`
	Reason            string            `json:"reason"`
}

type Recommendation struct {
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type Assessment struct {
	// ComplianceScore is rounded to one decimal for display. RiskLevel is
	// derived from the unrounded value, so 74.96 reads 75.0 at Medium risk.
	ComplianceScore        float64                 `json:"compliance_score"`
	RiskLevel              RiskLevel               `json:"risk_level"`
	CategoriesAudited      int                     `json:"categories_audited"`
	TotalQuestions         int                     `json:"total_questions"`
	TotalEvaluations       int                     `json:"total_evaluations"`
	ConformityDistribution models.ConformityCounts `json:"conformity_distribution"`
	CategorySummaries      []CategorySummary       `json:"category_summaries"`
	RiskAreas              []RiskArea              `json:"risk_areas"`
	Strengths              []Strength              `json:"strengths"`
	Recommendations        []Recommendation        `json:"recommendations"`
	GeneratedAt            time.Time               `json:"generated_at"`
}

// Aggregate builds the report from completed session summaries. Sessions of
// the same category are merged, in order of first appearance.
func Aggregate(summaries []models.Summary, now time.Time) (*Assessment, error) {
	if len(summaries) == 0 {
		return nil, models.ErrNoCompletedSessions
	}

	a := &Assessment{
		CategorySummaries: []CategorySummary{},
		RiskAreas:         []RiskArea{},
		Strengths:         []Strength{},
		GeneratedAt:       now,
	}

	index := make(map[category.Category]int)
	for _, s := range summaries {
		a.TotalQuestions += s.TotalQuestions
		a.ConformityDistribution.Merge(s.ConformityCounts)

		i, ok := index[s.Category]
		if !ok {
			i = len(a.CategorySummaries)
			index[s.Category] = i
			a.CategorySummaries = append(a.CategorySummaries, CategorySummary{Category: s.Category})
		}
		cs := &a.CategorySummaries[i]
		cs.Sessions++
		cs.TotalQuestions += s.TotalQuestions
		cs.Evaluations += len(s.Evaluations)
		cs.ConformityCounts.Merge(s.ConformityCounts)
		for _, e := range s.Evaluations {
			cs.scoreSum += e.Score
		}
		if s.CompletedAt != nil && (cs.LastCompletedAt == nil || s.CompletedAt.After(*cs.LastCompletedAt)) {
			t := *s.CompletedAt
			cs.LastCompletedAt = &t
		}
	}

	a.TotalEvaluations = a.ConformityDistribution.Total()
	score := complianceScore(a.ConformityDistribution)
	a.ComplianceScore = round1(score)
	a.RiskLevel = riskLevel(score)
	a.CategoriesAudited = len(a.CategorySummaries)

	for i := range a.CategorySummaries {
		cs := &a.CategorySummaries[i]
		classify(a, cs)
	}
	a.Recommendations = recommend(a.RiskAreas)
	return a, nil
}

func classify(a *Assessment, cs *CategorySummary) {
	n := cs.Evaluations
	if n > 0 {
		cs.AverageScore = cs.scoreSum / float64(n)
	}
	if cs.TotalQuestions > 0 {
		cs.CompletionRate = round1(percent(n, cs.TotalQuestions))
	}
	if n == 0 {
		return
	}
	noPct := percent(cs.ConformityCounts.None, n)
	fullPct := percent(cs.ConformityCounts.Full, n)
	cs.NoConformityPct = round1(noPct)
	cs.FullConformityPct = round1(fullPct)

	for _, band := range riskBands {
		if noPct >= band.minNoPct {
			a.RiskAreas = append(a.RiskAreas, RiskArea{
				Category:        cs.Category,
				Priority:        band.priority,
				NoConformityPct: cs.NoConformityPct,
				Reason: fmt.Sprintf("Non-conformity rate of %.1f%% (%d out of %d questions)",
					noPct, cs.ConformityCounts.None, n),
			})
			break
		}
	}
	if fullPct >= strengthFullPct {
		a.Strengths = append(a.Strengths, Strength{
			Category:          cs.Category,
			FullConformityPct: cs.FullConformityPct,
			Reason: fmt.Sprintf("Strong compliance with %.1f%% full conformity rate (%d out of %d questions)",
				fullPct, cs.ConformityCounts.Full, n),
		})
	}
}

func complianceScore(c models.ConformityCounts) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return (float64(c.Full)*fullWeight + float64(c.Partial)*partialWeight) / float64(total)
}

func riskLevel(score float64) RiskLevel {
	switch {
	case score >= lowRiskScore:
		return RiskLow
	case score >= mediumRiskScore:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func percent(part, whole int) float64 {
	return float64(part*100) / float64(whole)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
