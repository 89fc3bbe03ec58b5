package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/questionbank"
	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/requestcontext"
)

// StartCategory opens an audit session for one category. If the user already
// has an unfinished session for it, that session is returned instead.
func (s *Service) StartCategory(ctx context.Context, userID id.UserID, name string) (result *StartCategoryResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "StartCategory", attribute.String("category", name))
	defer func() {
		s.metrics.ObserveCommand("start_category", start, err)
		endSpan(span, err)
	}()

	c, err := category.Parse(name)
	if err != nil {
		return nil, err
	}
	if existing, ok := s.store.OpenSession(ctx, userID, c); ok {
		return &StartCategoryResult{SessionView: viewOf(existing), Resumed: true}, nil
	}

	qs, err := s.loadQuestions(ctx, c)
	if err != nil {
		return nil, err
	}
	candidate, err := models.NewAuditSession(id.NewSessionID(), userID, c, qs, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	session, resumed := s.store.CreateSession(ctx, candidate)
	if !resumed {
		s.sessionStarted(ctx, session)
	}
	span.SetAttributes(attribute.String("session_id", session.ID.String()))
	return &StartCategoryResult{SessionView: viewOf(session), Resumed: resumed}, nil
}

func (s *Service) sessionStarted(ctx context.Context, session *models.AuditSession) {
	s.metrics.IncSessionStarted(session.Category.String())
	s.logAudit(ctx, audit.EventSessionStarted,
		"user_id", string(session.UserID),
		"session_id", session.ID.String(),
		"category", session.Category.String(),
		"questions", len(session.Questions),
	)
	if session.IsCompleted() {
		s.categoryCompleted(ctx, session)
	}
	s.refreshGauges()
}

func (s *Service) categoryCompleted(ctx context.Context, session *models.AuditSession) {
	s.metrics.IncCategoryCompleted(session.Category.String())
	s.logAudit(ctx, audit.EventCategoryCompleted,
		"user_id", string(session.UserID),
		"session_id", session.ID.String(),
		"category", session.Category.String(),
	)
}

// AnswerQuestion records the observation for the current question and
// returns the question so the caller can ask for its baseline evidence.
func (s *Service) AnswerQuestion(ctx context.Context, cmd AnswerCommand) (result *AnswerResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "AnswerQuestion", attribute.String("session_id", cmd.SessionID.String()))
	defer func() {
		s.metrics.ObserveCommand("answer_question", start, err)
		endSpan(span, err)
	}()

	now := requestcontext.Now(ctx)
	var (
		question questionbank.Question
		index    int
	)
	session, _, err := s.store.ExecuteSession(ctx, cmd.SessionID, cmd.UserID, func(a *models.AuditSession, _ *models.MultiCategoryRun) error {
		index = a.Cursor
		q, err := a.Answer(cmd.Text, cmd.ExpectedIndex, now)
		question = q
		return err
	})
	if err != nil {
		return nil, sessionErr(err, cmd.SessionID)
	}

	s.logAudit(ctx, audit.EventObservationRecorded,
		"user_id", string(cmd.UserID),
		"session_id", session.ID.String(),
		"category", session.Category.String(),
		"question_id", question.ID,
		"question_index", strconv.Itoa(index),
	)
	return &AnswerResult{
		SessionID:     session.ID,
		QuestionIndex: index,
		Question:      question,
		Progress:      session.Progress(),
	}, nil
}

// SubmitEvidence scores evidence for the current question and advances the
// session. Completing the active session of a run marks its category done.
func (s *Service) SubmitEvidence(ctx context.Context, cmd SubmitEvidenceCommand) (result *SubmitEvidenceResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "SubmitEvidence", attribute.String("session_id", cmd.SessionID.String()))
	defer func() {
		s.metrics.ObserveCommand("submit_evidence", start, err)
		endSpan(span, err)
	}()

	now := requestcontext.Now(ctx)
	var eval models.EvidenceEvaluation
	session, run, err := s.store.ExecuteSession(ctx, cmd.SessionID, cmd.UserID, func(a *models.AuditSession, r *models.MultiCategoryRun) error {
		e, err := a.SubmitEvidence(cmd.Text, cmd.Source, s.scorer, cmd.ExpectedIndex, now)
		if err != nil {
			return err
		}
		eval = e
		if a.IsCompleted() && r != nil {
			r.MarkActiveCategoryCompleted(now)
		}
		return nil
	})
	if err != nil {
		return nil, sessionErr(err, cmd.SessionID)
	}

	span.SetAttributes(
		attribute.String("category", session.Category.String()),
		attribute.String("conformity", string(eval.Conformity)),
	)
	s.metrics.ObserveEvidence(string(eval.Conformity), eval.Score)
	s.logAudit(ctx, audit.EventEvidenceScored,
		"user_id", string(cmd.UserID),
		"session_id", session.ID.String(),
		"category", session.Category.String(),
		"question_id", eval.QuestionID,
		"decision", string(eval.Conformity),
		"reason", eval.Justification,
		"source", string(eval.Source.Kind),
	)

	result = &SubmitEvidenceResult{
		SessionID:        session.ID,
		Evaluation:       eval,
		Progress:         session.Progress(),
		SessionCompleted: session.IsCompleted(),
	}
	if !session.IsCompleted() {
		q, _ := session.CurrentQuestion()
		result.NextQuestion = &q
		return result, nil
	}

	s.categoryCompleted(ctx, session)
	s.refreshGauges()
	if run == nil {
		result.Completed = true
		return result, nil
	}
	progress := run.ProgressSummary()
	result.RunProgress = &progress
	if next, ok := run.NextCategory(); ok && !run.IsFinished() {
		result.NeedsCategoryTransition = true
		result.NextCategory = next
	} else {
		result.Completed = true
	}
	return result, nil
}

// CurrentQuestion reports where a session stands; completed sessions carry
// their summary.
func (s *Service) CurrentQuestion(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*CurrentQuestionResult, error) {
	session, err := s.store.Session(ctx, sessionID, userID)
	if err != nil {
		return nil, sessionErr(err, sessionID)
	}
	res := &CurrentQuestionResult{SessionView: viewOf(session)}
	if session.IsCompleted() {
		sum := session.Summary()
		res.Summary = &sum
	}
	return res, nil
}

func (s *Service) SessionSummary(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.Summary, error) {
	session, err := s.store.Session(ctx, sessionID, userID)
	if err != nil {
		return nil, sessionErr(err, sessionID)
	}
	sum := session.Summary()
	return &sum, nil
}
