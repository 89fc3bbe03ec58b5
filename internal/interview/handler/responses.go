package handler

import (
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/interview/service"
	"rmfaudit/internal/questionbank"
)

type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Message    string   `json:"message"`
}

type QuestionResponse struct {
	ID          string `json:"id"`
	SubQuestion string `json:"sub_question"`
	ControlID   string `json:"control_id,omitempty"`
}

// SessionResponse is the shared shape of every command that lands on a question.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	Category  category.Category `json:"category"`
	Question  *QuestionResponse `json:"question,omitempty"`
	Progress  models.Progress   `json:"progress"`
	Completed bool              `json:"completed"`
	Resumed   bool              `json:"resumed,omitempty"`
}

type AnswerResponse struct {
	SessionID        string          `json:"session_id"`
	QuestionIndex    int             `json:"question_index"`
	QuestionID       string          `json:"question_id"`
	BaselineEvidence string          `json:"baseline_evidence"`
	Progress         models.Progress `json:"progress"`
}

type EvaluationResponse struct {
	QuestionID    string                `json:"question_id"`
	QuestionIndex int                   `json:"question_index"`
	Conformity    string                `json:"conformity"`
	Score         float64               `json:"score"`
	Justification string                `json:"justification"`
	MatchedTerms  []string              `json:"matched_terms"`
	Source        models.EvidenceSource `json:"source"`
	EvaluatedAt   time.Time             `json:"evaluated_at"`
}

type SubmitEvidenceResponse struct {
	SessionID               string              `json:"session_id"`
	Evaluation              EvaluationResponse  `json:"evaluation"`
	NextQuestion            *QuestionResponse   `json:"next_question,omitempty"`
	Progress                models.Progress     `json:"progress"`
	SessionCompleted        bool                `json:"session_completed"`
	Completed               bool                `json:"completed"`
	NeedsCategoryTransition bool                `json:"needs_category_transition"`
	NextCategory            category.Category   `json:"next_category,omitempty"`
	RunProgress             *models.RunProgress `json:"run_progress,omitempty"`
}

type RunResponse struct {
	RunID string `json:"run_id,omitempty"`
	SessionResponse
	RunProgress models.RunProgress `json:"run_progress"`
}

type CurrentQuestionResponse struct {
	SessionResponse
	Summary *models.Summary `json:"summary,omitempty"`
}

func toQuestion(q *questionbank.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{ID: q.ID, SubQuestion: q.SubQuestion, ControlID: q.ControlID}
}

func toSession(v service.SessionView, resumed bool) SessionResponse {
	return SessionResponse{
		SessionID: v.SessionID.String(),
		Category:  v.Category,
		Question:  toQuestion(v.Question),
		Progress:  v.Progress,
		Completed: v.Completed,
		Resumed:   resumed,
	}
}

func toEvaluation(e models.EvidenceEvaluation) EvaluationResponse {
	terms := e.MatchedTerms
	if terms == nil {
		terms = []string{}
	}
	return EvaluationResponse{
		QuestionID:    e.QuestionID,
		QuestionIndex: e.QuestionIndex,
		Conformity:    string(e.Conformity),
		Score:         e.Score,
		Justification: e.Justification,
		MatchedTerms:  terms,
		Source:        e.Source,
		EvaluatedAt:   e.EvaluatedAt,
	}
}

func toSubmitEvidence(res *service.SubmitEvidenceResult) *SubmitEvidenceResponse {
	return &SubmitEvidenceResponse{
		SessionID:               res.SessionID.String(),
		Evaluation:              toEvaluation(res.Evaluation),
		NextQuestion:            toQuestion(res.NextQuestion),
		Progress:                res.Progress,
		SessionCompleted:        res.SessionCompleted,
		Completed:               res.Completed,
		NeedsCategoryTransition: res.NeedsCategoryTransition,
		NextCategory:            res.NextCategory,
		RunProgress:             res.RunProgress,
	}
}
