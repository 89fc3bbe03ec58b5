// Package questionbank supplies the ordered audit questions for a category.
//
// Sources (file, postgres, memory) implement Bank. Cached adds a Redis
// read-through layer and Guarded bounds every load with a timeout and a
// circuit breaker, so callers see either questions or ErrUnavailable.
package questionbank

import (
	"context"

	"rmfaudit/internal/category"
)

// Question is one sub-question of a category with the evidence it expects.
type Question struct {
	ID               string `json:"id" yaml:"id"`
	SubQuestion      string `json:"sub_question" yaml:"sub_question"`
	BaselineEvidence string `json:"baseline_evidence" yaml:"baseline_evidence"`
	ControlID        string `json:"control_id" yaml:"control_id"`
}

//go:generate mockgen -source=models.go -destination=mocks/bank_mock.go -package=mocks Bank

// Bank loads the ordered questions for a category. A category with no
// questions yields an empty slice, not an error.
type Bank interface {
	LoadQuestions(ctx context.Context, c category.Category) ([]Question, error)
}

// Clone returns a copy of qs that shares no backing array with it.
func Clone(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	return append(make([]Question, 0, len(qs)), qs...)
}
