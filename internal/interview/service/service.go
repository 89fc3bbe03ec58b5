// Package service implements the interview command surface on top of the
// session registry, the question bank and the evidence scorer.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/metrics"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/interview/registry"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/scoring"
	"rmfaudit/pkg/attrs"
	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/sentinel"
	"rmfaudit/pkg/requestcontext"
)

// Store holds sessions and runs. *registry.Registry implements it.
type Store interface {
	Session(ctx context.Context, sessionID id.SessionID, userID id.UserID) (*models.AuditSession, error)
	OpenSession(ctx context.Context, userID id.UserID, c category.Category) (*models.AuditSession, bool)
	LatestRun(ctx context.Context, userID id.UserID) (*models.MultiCategoryRun, error)
	CompletedSessions(ctx context.Context, userID id.UserID) []*models.AuditSession
	CreateSession(ctx context.Context, candidate *models.AuditSession) (*models.AuditSession, bool)
	CreateRun(ctx context.Context, run *models.MultiCategoryRun, first *models.AuditSession) (*models.MultiCategoryRun, *models.AuditSession, bool, error)
	AdvanceRun(ctx context.Context, userID id.UserID, expectedIndex int, next *models.AuditSession) (*models.MultiCategoryRun, *models.AuditSession, bool, error)
	ExecuteSession(ctx context.Context, sessionID id.SessionID, userID id.UserID, fn registry.SessionMutation) (*models.AuditSession, *models.MultiCategoryRun, error)
	Stats() registry.Stats
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs interview commands. Every command either applies completely
// or returns an error without changing state.
type Service struct {
	bank      questionbank.Bank
	store     Store
	scorer    models.Scorer
	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithScorer replaces the default evidence scorer.
func WithScorer(scorer models.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

func New(bank questionbank.Bank, store Store, opts ...Option) *Service {
	s := &Service{
		bank:   bank,
		store:  store,
		scorer: scoring.New(),
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("rmfaudit/interview"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListCategories returns the categories that can be audited, in canonical order.
func (s *Service) ListCategories() []category.Category {
	return category.All()
}

func (s *Service) loadQuestions(ctx context.Context, c category.Category) ([]questionbank.Question, error) {
	qs, err := s.bank.LoadQuestions(ctx, c)
	if err != nil {
		s.logger.WarnContext(ctx, "question bank unavailable",
			"category", c.String(),
			"error", err,
		)
		return nil, models.ErrQuestionBankUnavailable.WithCause(err)
	}
	return qs, nil
}

// sessionErr translates a registry miss into UnknownSession.
func sessionErr(err error, sessionID id.SessionID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrUnknownSession.Withf("audit session %s not found", sessionID).WithCause(err)
	}
	return err
}

// runErr translates a registry miss into NoActiveRun.
func runErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrNoActiveRun.WithCause(err)
	}
	return err
}

func (s *Service) startSpan(ctx context.Context, name string, kv ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "interview."+name, trace.WithAttributes(kv...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) refreshGauges() {
	s.metrics.SetOpenSessions(s.store.Stats().OpenSessions)
}

// logAudit writes an audit log line and forwards the event to the publisher.
// Emission failures are logged; the command has already been applied.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.publisher == nil {
		return
	}
	err := s.publisher.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		UserID:        id.UserID(attrs.ExtractString(attributes, "user_id")),
		Action:        string(event),
		SessionID:     attrs.ExtractString(attributes, "session_id"),
		RunID:         attrs.ExtractString(attributes, "run_id"),
		AuditCategory: attrs.ExtractString(attributes, "category"),
		QuestionID:    attrs.ExtractString(attributes, "question_id"),
		Decision:      attrs.ExtractString(attributes, "decision"),
		Reason:        attrs.ExtractString(attributes, "reason"),
		RequestID:     requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}
