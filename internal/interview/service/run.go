package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/requestcontext"
)

// StartMultiCategory begins a run over the given categories, in the order
// supplied, and opens the session for the first one.
func (s *Service) StartMultiCategory(ctx context.Context, userID id.UserID, names []string) (result *StartMultiCategoryResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "StartMultiCategory")
	defer func() {
		s.metrics.ObserveCommand("start_multi_category", start, err)
		endSpan(span, err)
	}()

	// Every entry is parsed, blanks included, before duplicates collapse.
	cats, err := category.ParseAll(names)
	if err != nil {
		return nil, err
	}
	cats = dedupeCategories(cats)
	if len(cats) < 2 {
		return nil, models.ErrTooFewCategories
	}
	if current, err := s.store.LatestRun(ctx, userID); err == nil && !current.IsFinished() {
		return nil, models.ErrRunInProgress.Withf("run %s is still in progress", current.ID)
	}

	now := requestcontext.Now(ctx)
	run, err := models.NewMultiCategoryRun(id.NewRunID(), userID, cats, now)
	if err != nil {
		return nil, err
	}
	first, err := s.candidateSession(ctx, userID, cats[0])
	if err != nil {
		return nil, err
	}
	run, session, resumed, err := s.store.CreateRun(ctx, run, first)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("run_id", run.ID.String()))
	s.metrics.IncRunStarted()
	s.logAudit(ctx, audit.EventMultiCategoryStarted,
		"user_id", string(userID),
		"run_id", run.ID.String(),
		"session_id", session.ID.String(),
		"category", session.Category.String(),
		"categories", joinCategories(run.Categories),
	)
	if !resumed {
		s.sessionStarted(ctx, session)
	}
	return &StartMultiCategoryResult{
		RunID:       run.ID,
		SessionView: viewOf(session),
		Resumed:     resumed,
		RunProgress: run.ProgressSummary(),
	}, nil
}

// ContinueToNextCategory moves the user's run to its next category once the
// active one is completed.
func (s *Service) ContinueToNextCategory(ctx context.Context, userID id.UserID) (result *ContinueResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "ContinueToNextCategory")
	defer func() {
		s.metrics.ObserveCommand("continue_to_next_category", start, err)
		endSpan(span, err)
	}()

	run, err := s.store.LatestRun(ctx, userID)
	if err != nil {
		return nil, runErr(err)
	}
	if err := run.CanAdvance(); err != nil {
		return nil, err
	}
	next, _ := run.NextCategory()
	candidate, err := s.candidateSession(ctx, userID, next)
	if err != nil {
		return nil, err
	}
	run, session, resumed, err := s.store.AdvanceRun(ctx, userID, run.ActiveIndex, candidate)
	if err != nil {
		return nil, runErr(err)
	}

	span.SetAttributes(
		attribute.String("run_id", run.ID.String()),
		attribute.String("category", next.String()),
	)
	s.logAudit(ctx, audit.EventCategoryAdvanced,
		"user_id", string(userID),
		"run_id", run.ID.String(),
		"session_id", session.ID.String(),
		"category", next.String(),
		"active_index", strconv.Itoa(run.ActiveIndex),
	)
	if !resumed {
		s.sessionStarted(ctx, session)
	}
	return &ContinueResult{
		SessionView: viewOf(session),
		Resumed:     resumed,
		RunProgress: run.ProgressSummary(),
	}, nil
}

// RunProgress returns the progress of the user's latest run.
func (s *Service) RunProgress(ctx context.Context, userID id.UserID) (*models.RunProgress, error) {
	run, err := s.store.LatestRun(ctx, userID)
	if err != nil {
		return nil, runErr(err)
	}
	p := run.ProgressSummary()
	return &p, nil
}

// candidateSession reuses the user's open session for c, so the question
// bank is only consulted when a new session is really needed.
func (s *Service) candidateSession(ctx context.Context, userID id.UserID, c category.Category) (*models.AuditSession, error) {
	if open, ok := s.store.OpenSession(ctx, userID, c); ok {
		return open, nil
	}
	qs, err := s.loadQuestions(ctx, c)
	if err != nil {
		return nil, err
	}
	return models.NewAuditSession(id.NewSessionID(), userID, c, qs, requestcontext.Now(ctx))
}

func dedupeCategories(cats []category.Category) []category.Category {
	seen := make(map[category.Category]struct{}, len(cats))
	out := make([]category.Category, 0, len(cats))
	for _, c := range cats {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func joinCategories(cats []category.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}
