// Package handler exposes the interview commands over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rmfaudit/internal/assessment"
	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/interview/service"
	id "rmfaudit/pkg/domain"
	dErrors "rmfaudit/pkg/domain-errors"
	"rmfaudit/pkg/platform/httputil"
	"rmfaudit/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

// Service is the interview command surface.
type Service interface {
	ListCategories() []category.Category
	StartCategory(ctx context.Context, userID id.UserID, name string) (*service.StartCategoryResult, error)
	CurrentQuestion(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*service.CurrentQuestionResult, error)
	AnswerQuestion(ctx context.Context, cmd service.AnswerCommand) (*service.AnswerResult, error)
	SubmitEvidence(ctx context.Context, cmd service.SubmitEvidenceCommand) (*service.SubmitEvidenceResult, error)
	SessionSummary(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.Summary, error)
	StartMultiCategory(ctx context.Context, userID id.UserID, names []string) (*service.StartMultiCategoryResult, error)
	ContinueToNextCategory(ctx context.Context, userID id.UserID) (*service.ContinueResult, error)
	RunProgress(ctx context.Context, userID id.UserID) (*models.RunProgress, error)
	GenerateAssessment(ctx context.Context, userID id.UserID) (*assessment.Assessment, error)
}

// Handler wires interview endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts interview endpoints on the router. auditMiddleware wraps
// the /audits routes only; /categories stays public.
func (h *Handler) Register(r chi.Router, auditMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/categories", h.HandleListCategories)
	r.Route("/audits", func(r chi.Router) {
		r.Use(auditMiddleware...)
		r.Post("/sessions", h.HandleStartCategory)
		r.Get("/sessions/{id}", h.HandleCurrentQuestion)
		r.Post("/sessions/{id}/observations", h.HandleAnswer)
		r.Post("/sessions/{id}/evidence", h.HandleSubmitEvidence)
		r.Get("/sessions/{id}/summary", h.HandleSessionSummary)
		r.Post("/runs", h.HandleStartMultiCategory)
		r.Post("/runs/continue", h.HandleContinue)
		r.Get("/runs/current", h.HandleRunProgress)
		r.Post("/assessment", h.HandleGenerateAssessment)
	})
}

// HandleListCategories handles GET /categories.
func (h *Handler) HandleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := h.service.ListCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	httputil.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: names,
		Message:    "Select one category to audit, or two or more for a multi-category audit.",
	})
}

// HandleStartCategory handles POST /audits/sessions.
func (h *Handler) HandleStartCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StartCategoryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.StartCategory(ctx, userID, req.Category)
	if err != nil {
		h.fail(ctx, w, "start category failed", err, "category", req.Category)
		return
	}
	status := http.StatusCreated
	if res.Resumed {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, toSession(res.SessionView, res.Resumed))
}

// HandleCurrentQuestion handles GET /audits/sessions/{id}.
func (h *Handler) HandleCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	res, err := h.service.CurrentQuestion(ctx, userID, sessionID)
	if err != nil {
		h.fail(ctx, w, "current question lookup failed", err, "session_id", sessionID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CurrentQuestionResponse{
		SessionResponse: toSession(res.SessionView, false),
		Summary:         res.Summary,
	})
}

// HandleAnswer handles POST /audits/sessions/{id}/observations.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.AnswerQuestion(ctx, service.AnswerCommand{
		UserID:        userID,
		SessionID:     sessionID,
		Text:          req.Text,
		ExpectedIndex: req.ExpectedIndex,
	})
	if err != nil {
		h.fail(ctx, w, "answer failed", err, "session_id", sessionID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AnswerResponse{
		SessionID:        res.SessionID.String(),
		QuestionIndex:    res.QuestionIndex,
		QuestionID:       res.Question.ID,
		BaselineEvidence: res.Question.BaselineEvidence,
		Progress:         res.Progress,
	})
}

// HandleSubmitEvidence handles POST /audits/sessions/{id}/evidence.
func (h *Handler) HandleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitEvidenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.SubmitEvidence(ctx, service.SubmitEvidenceCommand{
		UserID:        userID,
		SessionID:     sessionID,
		Text:          req.Text,
		Source:        req.ParsedSource(),
		ExpectedIndex: req.ExpectedIndex,
	})
	if err != nil {
		h.fail(ctx, w, "evidence submission failed", err, "session_id", sessionID.String())
		return
	}
	h.logger.InfoContext(ctx, "evidence scored",
		"request_id", requestID,
		"user_id", string(userID),
		"session_id", sessionID.String(),
		"conformity", string(res.Evaluation.Conformity),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toSubmitEvidence(res))
}

// HandleSessionSummary handles GET /audits/sessions/{id}/summary.
func (h *Handler) HandleSessionSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	sum, err := h.service.SessionSummary(ctx, userID, sessionID)
	if err != nil {
		h.fail(ctx, w, "session summary failed", err, "session_id", sessionID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

// HandleStartMultiCategory handles POST /audits/runs.
func (h *Handler) HandleStartMultiCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StartMultiCategoryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.StartMultiCategory(ctx, userID, req.Categories)
	if err != nil {
		h.fail(ctx, w, "start multi-category audit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RunResponse{
		RunID:           res.RunID.String(),
		SessionResponse: toSession(res.SessionView, res.Resumed),
		RunProgress:     res.RunProgress,
	})
}

// HandleContinue handles POST /audits/runs/continue.
func (h *Handler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	res, err := h.service.ContinueToNextCategory(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "continue to next category failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RunResponse{
		RunID:           res.RunProgress.RunID.String(),
		SessionResponse: toSession(res.SessionView, res.Resumed),
		RunProgress:     res.RunProgress,
	})
}

// HandleRunProgress handles GET /audits/runs/current.
func (h *Handler) HandleRunProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	progress, err := h.service.RunProgress(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "run progress lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, progress)
}

// HandleGenerateAssessment handles POST /audits/assessment.
func (h *Handler) HandleGenerateAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}
	a, err := h.service.GenerateAssessment(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "assessment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) requireUser(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return userID, true
}

func (h *Handler) sessionParams(w http.ResponseWriter, r *http.Request) (id.UserID, id.SessionID, bool) {
	userID, ok := h.requireUser(r.Context(), w)
	if !ok {
		return "", id.SessionID{}, false
	}
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", id.SessionID{}, false
	}
	return userID, sessionID, true
}

// fail logs at warn for caller errors and at error for everything else, then
// writes the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append([]any{
		"request_id", requestcontext.RequestID(ctx),
		"user_id", string(requestcontext.UserID(ctx)),
		"error", err,
	}, attrs...)
	if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal && de.Code != dErrors.CodeUnavailable {
		h.logger.WarnContext(ctx, msg, args...)
	} else {
		h.logger.ErrorContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
