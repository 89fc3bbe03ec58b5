// Package models holds the interview state machines: AuditSession walks one
// category's questions, MultiCategoryRun sequences several categories.
//
// Mutating methods follow a CanX / ApplyX split: CanX validates without side
// effects and ApplyX assumes validation passed. X combines both.
package models

import (
	"strings"
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/scoring"
	id "rmfaudit/pkg/domain"
)

// Scorer grades evidence against a question's baseline.
type Scorer interface {
	Score(evidence, baseline string) scoring.Result
}

// Observation is the user's answer to one question.
type Observation struct {
	QuestionIndex int       `json:"question_index"`
	QuestionID    string    `json:"question_id"`
	Text          string    `json:"text"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type EvidenceSourceKind string

const (
	EvidenceSourceText EvidenceSourceKind = "text"
	EvidenceSourceFile EvidenceSourceKind = "file"
	EvidenceSourceURL  EvidenceSourceKind = "url"
)

func (k EvidenceSourceKind) IsValid() bool {
	switch k {
	case EvidenceSourceText, EvidenceSourceFile, EvidenceSourceURL:
		return true
	}
	return false
}

// EvidenceSource describes where already-extracted evidence text came from.
type EvidenceSource struct {
	Kind EvidenceSourceKind `json:"kind"`
	Name string             `json:"name,omitempty"`
}

// EvidenceEvaluation is the scored evidence for one question. Immutable once recorded.
type EvidenceEvaluation struct {
	QuestionIndex int                `json:"question_index"`
	QuestionID    string             `json:"question_id"`
	EvidenceText  string             `json:"evidence_text"`
	Source        EvidenceSource     `json:"source"`
	Conformity    scoring.Conformity `json:"conformity"`
	Justification string             `json:"justification"`
	Score         float64            `json:"score"`
	MatchedTerms  []string           `json:"matched_terms"`
	EvaluatedAt   time.Time          `json:"evaluated_at"`
}

// AuditSession is one user's interview over one category.
//
// Invariants:
//   - Cursor only moves forward and never exceeds len(Questions)
//   - len(Evaluations) == Cursor
//   - State is Completed exactly when Cursor == len(Questions)
type AuditSession struct {
	ID           id.SessionID
	UserID       id.UserID
	Category     category.Category
	Questions    []questionbank.Question
	Cursor       int
	Observations []Observation
	Evaluations  []EvidenceEvaluation
	State        State
	StartedAt    time.Time
	LastActivity time.Time
	CompletedAt  *time.Time
}

// NewAuditSession starts a session at the first question. A category without
// questions yields a session that is already completed.
func NewAuditSession(sessionID id.SessionID, userID id.UserID, c category.Category, questions []questionbank.Question, now time.Time) (*AuditSession, error) {
	if !c.IsValid() {
		return nil, ErrInvalidCategory.Withf("invalid category %q", c)
	}
	s := &AuditSession{
		ID:           sessionID,
		UserID:       userID,
		Category:     c,
		Questions:    questionbank.Clone(questions),
		Observations: []Observation{},
		Evaluations:  []EvidenceEvaluation{},
		State:        StateAwaitingObservation,
		StartedAt:    now,
		LastActivity: now,
	}
	if len(s.Questions) == 0 {
		s.complete(now)
	}
	return s, nil
}

func (s *AuditSession) IsCompleted() bool {
	return s.State == StateCompleted
}

// CurrentQuestion returns the question at the cursor.
func (s *AuditSession) CurrentQuestion() (questionbank.Question, error) {
	if s.Cursor >= len(s.Questions) {
		return questionbank.Question{}, ErrNoCurrentQuestion
	}
	return s.Questions[s.Cursor], nil
}

// CanAnswer checks that an observation may be recorded. expected, when set,
// must equal the cursor the caller last saw.
func (s *AuditSession) CanAnswer(expected *int) error {
	if s.Cursor >= len(s.Questions) {
		return ErrNoCurrentQuestion
	}
	if expected != nil && *expected != s.Cursor {
		return ErrStaleSessionState.Withf("expected question %d but session is at question %d", *expected, s.Cursor)
	}
	if s.State != StateAwaitingObservation {
		return ErrNotAwaitingObservation
	}
	return nil
}

func (s *AuditSession) ApplyAnswer(text string, now time.Time) questionbank.Question {
	q := s.Questions[s.Cursor]
	s.Observations = append(s.Observations, Observation{
		QuestionIndex: s.Cursor,
		QuestionID:    q.ID,
		Text:          text,
		RecordedAt:    now,
	})
	s.State = StateAwaitingEvidence
	s.LastActivity = now
	return q
}

// Answer records the observation for the current question and returns that
// question so the caller can prompt for its baseline evidence.
func (s *AuditSession) Answer(text string, expected *int, now time.Time) (questionbank.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return questionbank.Question{}, ErrEmptyText.Withf("observation text must not be empty")
	}
	if err := s.CanAnswer(expected); err != nil {
		return questionbank.Question{}, err
	}
	return s.ApplyAnswer(text, now), nil
}

func (s *AuditSession) CanSubmitEvidence(expected *int) error {
	if expected != nil && *expected != s.Cursor {
		return ErrStaleSessionState.Withf("expected question %d but session is at question %d", *expected, s.Cursor)
	}
	if s.State != StateAwaitingEvidence {
		return ErrNotAwaitingEvidence
	}
	return nil
}

func (s *AuditSession) ApplyEvidence(text string, source EvidenceSource, scorer Scorer, now time.Time) EvidenceEvaluation {
	q := s.Questions[s.Cursor]
	res := scorer.Score(text, q.BaselineEvidence)
	if source.Kind == "" {
		source.Kind = EvidenceSourceText
	}
	eval := EvidenceEvaluation{
		QuestionIndex: s.Cursor,
		QuestionID:    q.ID,
		EvidenceText:  text,
		Source:        source,
		Conformity:    res.Conformity,
		Justification: res.Justification,
		Score:         res.Score,
		MatchedTerms:  append([]string{}, res.MatchedTerms...),
		EvaluatedAt:   now,
	}
	s.Evaluations = append(s.Evaluations, eval)
	s.Cursor++
	s.LastActivity = now
	if s.Cursor < len(s.Questions) {
		s.State = StateAwaitingObservation
	} else {
		s.complete(now)
	}
	return eval
}

// SubmitEvidence scores evidence for the current question and moves to the
// next one, completing the session after the last.
func (s *AuditSession) SubmitEvidence(text string, source EvidenceSource, scorer Scorer, expected *int, now time.Time) (EvidenceEvaluation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return EvidenceEvaluation{}, ErrEmptyText.Withf("evidence text must not be empty")
	}
	if err := s.CanSubmitEvidence(expected); err != nil {
		return EvidenceEvaluation{}, err
	}
	return s.ApplyEvidence(text, source, scorer, now), nil
}

func (s *AuditSession) complete(now time.Time) {
	s.State = StateCompleted
	completedAt := now
	s.CompletedAt = &completedAt
}

// Progress is a read-only position report. Current never exceeds Total.
type Progress struct {
	Current  int               `json:"current"`
	Total    int               `json:"total"`
	State    State             `json:"state"`
	Category category.Category `json:"category"`
}

func (s *AuditSession) Progress() Progress {
	total := len(s.Questions)
	return Progress{
		Current:  min(s.Cursor+1, total),
		Total:    total,
		State:    s.State,
		Category: s.Category,
	}
}

// Clone returns a deep copy.
func (s *AuditSession) Clone() *AuditSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Questions = questionbank.Clone(s.Questions)
	cp.Observations = append([]Observation{}, s.Observations...)
	cp.Evaluations = make([]EvidenceEvaluation, len(s.Evaluations))
	for i, e := range s.Evaluations {
		e.MatchedTerms = append([]string{}, e.MatchedTerms...)
		cp.Evaluations[i] = e
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
