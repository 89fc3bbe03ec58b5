// Package audit carries the audit trail of interview commands.
//
// Services emit Events through a Publisher; a Store decides where they land
// (in memory, a Kafka topic or a Postgres table).
package audit

import (
	"context"
	"time"

	id "rmfaudit/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events that change the recorded audit outcome.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers abuse signals such as rate limiting.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine progress through an interview.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    id.UserID     `json:"user_id"`
	Action    string        `json:"action"`
	SessionID string        `json:"session_id,omitempty"`
	RunID     string        `json:"run_id,omitempty"`
	// AuditCategory is the trustworthiness characteristic being assessed.
	AuditCategory string `json:"audit_category,omitempty"`
	QuestionID    string `json:"question_id,omitempty"`
	Decision      string `json:"decision,omitempty"`
	Reason        string `json:"reason,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventSessionStarted        AuditEvent = "audit_session_started"
	EventObservationRecorded   AuditEvent = "observation_recorded"
	EventEvidenceScored        AuditEvent = "evidence_scored"
	EventCategoryCompleted     AuditEvent = "category_completed"
	EventMultiCategoryStarted  AuditEvent = "multi_category_started"
	EventCategoryAdvanced      AuditEvent = "category_advanced"
	EventAssessmentGenerated   AuditEvent = "assessment_generated"
	EventRateLimitExceeded     AuditEvent = "rate_limit_exceeded"
	EventQuestionBankDegraded  AuditEvent = "question_bank_degraded"
	EventQuestionBankRecovered AuditEvent = "question_bank_recovered"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEvidenceScored:      CategoryCompliance,
	EventCategoryCompleted:   CategoryCompliance,
	EventAssessmentGenerated: CategoryCompliance,

	EventRateLimitExceeded: CategorySecurity,

	EventSessionStarted:        CategoryOperations,
	EventObservationRecorded:   CategoryOperations,
	EventMultiCategoryStarted:  CategoryOperations,
	EventCategoryAdvanced:      CategoryOperations,
	EventQuestionBankDegraded:  CategoryOperations,
	EventQuestionBankRecovered: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader is implemented by stores that can replay a user's trail. Streaming
// sinks such as Kafka do not.
type Reader interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
