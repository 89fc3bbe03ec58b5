package models

import (
	"rmfaudit/internal/category"
	dErrors "rmfaudit/pkg/domain-errors"
)

// Errors returned by the interview commands. Each carries a stable Reason so
// clients and tests can match with errors.Is even after Withf or WithCause.
var (
	ErrInvalidCategory         = category.ErrInvalid
	ErrTooFewCategories        = dErrors.NewReason(dErrors.CodeValidation, "too_few_categories", "a multi-category audit needs at least two distinct categories")
	ErrEmptyText               = dErrors.NewReason(dErrors.CodeValidation, "empty_text", "text must not be empty")
	ErrUnknownSession          = dErrors.NewReason(dErrors.CodeNotFound, "unknown_session", "audit session not found")
	ErrNoActiveRun             = dErrors.NewReason(dErrors.CodeNotFound, "no_active_run", "no multi-category audit in progress")
	ErrNoCompletedSessions     = dErrors.NewReason(dErrors.CodeNotFound, "no_completed_sessions", "no completed audit sessions to assess")
	ErrNotAwaitingObservation  = dErrors.NewReason(dErrors.CodeConflict, "not_awaiting_observation", "session is not awaiting an observation")
	ErrNotAwaitingEvidence     = dErrors.NewReason(dErrors.CodeConflict, "not_awaiting_evidence", "session is not awaiting evidence")
	ErrNoCurrentQuestion       = dErrors.NewReason(dErrors.CodeConflict, "no_current_question", "session has no current question")
	ErrNoRemainingCategories   = dErrors.NewReason(dErrors.CodeConflict, "no_remaining_categories", "all categories of the run have been audited")
	ErrCategoryInProgress      = dErrors.NewReason(dErrors.CodeConflict, "category_in_progress", "the active category is not completed yet")
	ErrRunInProgress           = dErrors.NewReason(dErrors.CodeConflict, "run_in_progress", "a multi-category audit is already in progress")
	ErrStaleSessionState       = dErrors.NewReason(dErrors.CodeConflict, "stale_session_state", "session changed since it was read")
	ErrQuestionBankUnavailable = dErrors.NewReason(dErrors.CodeUnavailable, "question_bank_unavailable", "question bank is unavailable, retry later")
)
