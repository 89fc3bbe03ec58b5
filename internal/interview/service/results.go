package service

import (
	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/questionbank"
	id "rmfaudit/pkg/domain"
)

// SessionView is a session's position: its current question (nil once
// completed) and progress.
type SessionView struct {
	SessionID id.SessionID
	Category  category.Category
	Question  *questionbank.Question
	Progress  models.Progress
	Completed bool
}

type StartCategoryResult struct {
	SessionView
	Resumed bool
}

type AnswerCommand struct {
	UserID    id.UserID
	SessionID id.SessionID
	Text      string
	// ExpectedIndex, when set, must match the session's current question.
	ExpectedIndex *int
}

type AnswerResult struct {
	SessionID     id.SessionID
	QuestionIndex int
	Question      questionbank.Question
	Progress      models.Progress
}

type SubmitEvidenceCommand struct {
	UserID        id.UserID
	SessionID     id.SessionID
	Text          string
	Source        models.EvidenceSource
	ExpectedIndex *int
}

type SubmitEvidenceResult struct {
	SessionID    id.SessionID
	Evaluation   models.EvidenceEvaluation
	NextQuestion *questionbank.Question
	Progress     models.Progress
	// SessionCompleted is set when this submission answered the last question.
	SessionCompleted bool
	// Completed is set when nothing is left to audit: the session completed
	// and it is either standalone or the last category of its run.
	Completed               bool
	NeedsCategoryTransition bool
	NextCategory            category.Category
	RunProgress             *models.RunProgress
}

type StartMultiCategoryResult struct {
	RunID id.RunID
	SessionView
	Resumed     bool
	RunProgress models.RunProgress
}

type ContinueResult struct {
	SessionView
	Resumed     bool
	RunProgress models.RunProgress
}

// CurrentQuestionResult carries the session summary once it is completed.
type CurrentQuestionResult struct {
	SessionView
	Summary *models.Summary
}

func viewOf(s *models.AuditSession) SessionView {
	v := SessionView{
		SessionID: s.ID,
		Category:  s.Category,
		Progress:  s.Progress(),
		Completed: s.IsCompleted(),
	}
	if q, err := s.CurrentQuestion(); err == nil {
		v.Question = &q
	}
	return v
}
