package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rmfaudit/internal/assessment"
	"rmfaudit/internal/interview/models"
	id "rmfaudit/pkg/domain"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/requestcontext"
)

// GenerateAssessment aggregates every completed session of the user.
func (s *Service) GenerateAssessment(ctx context.Context, userID id.UserID) (result *assessment.Assessment, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "GenerateAssessment")
	defer func() {
		s.metrics.ObserveCommand("generate_assessment", start, err)
		endSpan(span, err)
	}()

	sessions := s.store.CompletedSessions(ctx, userID)
	summaries := make([]models.Summary, len(sessions))
	for i, session := range sessions {
		summaries[i] = session.Summary()
	}
	result, err = assessment.Aggregate(summaries, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("risk_level", string(result.RiskLevel)))
	s.metrics.IncAssessment(string(result.RiskLevel))
	s.logAudit(ctx, audit.EventAssessmentGenerated,
		"user_id", string(userID),
		"decision", string(result.RiskLevel),
		"reason", fmt.Sprintf("compliance score %.1f over %d categories", result.ComplianceScore, result.CategoriesAudited),
	)
	return result, nil
}
