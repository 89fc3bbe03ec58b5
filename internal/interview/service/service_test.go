package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rmfaudit/internal/assessment"
	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/metrics"
	"rmfaudit/internal/interview/models"
	"rmfaudit/internal/interview/registry"
	"rmfaudit/internal/questionbank"
	"rmfaudit/internal/questionbank/mocks"
	"rmfaudit/internal/questionbank/store/memory"
	"rmfaudit/internal/scoring"
	id "rmfaudit/pkg/domain"
	dErrors "rmfaudit/pkg/domain-errors"
	audit "rmfaudit/pkg/platform/audit"
	"rmfaudit/pkg/platform/audit/publisher"
	auditmemory "rmfaudit/pkg/platform/audit/store/memory"
	"rmfaudit/pkg/platform/sentinel"
	"rmfaudit/pkg/requestcontext"
)

const (
	alice = id.UserID("alice")

	baseline = "Documented privacy policy and audit logs with monitoring procedure reviewed and approved by compliance team."
	// 190 characters, 6 shared audit terms, 12 shared words: scores Full.
	strongEvidence = "Our documented privacy policy is enforced with audit logs retained for one year, continuous monitoring " +
		"dashboards, a written procedure reviewed quarterly and approved by the compliance team."
)

type ServiceSuite struct {
	suite.Suite
	bank     *memory.Store
	registry *registry.Registry
	events   *auditmemory.InMemoryStore
	metrics  *metrics.Metrics
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func questions(prefix string, n int) []questionbank.Question {
	qs := make([]questionbank.Question, n)
	for i := range qs {
		qs[i] = questionbank.Question{
			ID:               prefix + "-0" + string(rune('1'+i)),
			SubQuestion:      "Question " + string(rune('1'+i)) + "?",
			BaselineEvidence: baseline,
		}
	}
	return qs
}

func (s *ServiceSuite) SetupTest() {
	s.bank = memory.New()
	s.bank.Put(category.Safe, questions("SA", 3))
	s.bank.Put(category.PrivacyEnhanced, questions("PE", 2))
	s.bank.Put(category.Explainable, nil)

	s.registry = registry.New()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.bank, s.registry,
		WithAuditPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

// completeSession answers every remaining question with evidence.
func (s *ServiceSuite) completeSession(sid id.SessionID, evidence string) *SubmitEvidenceResult {
	for {
		_, err := s.service.AnswerQuestion(s.ctx, AnswerCommand{UserID: alice, SessionID: sid, Text: "We have this in place."})
		s.Require().NoError(err)
		res, err := s.service.SubmitEvidence(s.ctx, SubmitEvidenceCommand{UserID: alice, SessionID: sid, Text: evidence})
		s.Require().NoError(err)
		if res.SessionCompleted {
			return res
		}
	}
}

func (s *ServiceSuite) actions() []string {
	events, err := s.events.ListByUser(s.ctx, alice)
	s.Require().NoError(err)
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}

func (s *ServiceSuite) TestStartCategory() {
	s.Run("invalid category", func() {
		_, err := s.service.StartCategory(s.ctx, alice, "Robust")
		s.ErrorIs(err, models.ErrInvalidCategory)
	})

	res, err := s.service.StartCategory(s.ctx, alice, "  Safe ")
	s.Require().NoError(err)
	s.False(res.Resumed)
	s.Equal(category.Safe, res.Category)
	s.Require().NotNil(res.Question)
	s.Equal("SA-01", res.Question.ID)
	s.Equal(models.Progress{Current: 1, Total: 3, State: models.StateAwaitingObservation, Category: category.Safe}, res.Progress)

	s.Run("second start resumes the open session", func() {
		again, err := s.service.StartCategory(s.ctx, alice, "Safe")
		s.Require().NoError(err)
		s.True(again.Resumed)
		s.Equal(res.SessionID, again.SessionID)
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsStarted.WithLabelValues("Safe")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.OpenSessions))
	s.Equal([]string{string(audit.EventSessionStarted)}, s.actions())
}

func (s *ServiceSuite) TestZeroQuestionCategory() {
	res, err := s.service.StartCategory(s.ctx, alice, "Explainable and Interpretable")
	s.Require().NoError(err)
	s.True(res.Completed)
	s.Nil(res.Question)
	s.Equal(0, res.Progress.Current)
	s.Equal(0, res.Progress.Total)

	cur, err := s.service.CurrentQuestion(s.ctx, alice, res.SessionID)
	s.Require().NoError(err)
	s.Require().NotNil(cur.Summary)
	s.Equal(0, cur.Summary.TotalQuestions)
}

func (s *ServiceSuite) TestSingleCategoryHappyPath() {
	started, err := s.service.StartCategory(s.ctx, alice, "Safe")
	s.Require().NoError(err)

	for i := range 3 {
		ans, err := s.service.AnswerQuestion(s.ctx, AnswerCommand{UserID: alice, SessionID: started.SessionID, Text: "Reviewed yearly.", ExpectedIndex: &i})
		s.Require().NoError(err)
		s.Equal(baseline, ans.Question.BaselineEvidence)
		s.Equal(i, ans.QuestionIndex)

		res, err := s.service.SubmitEvidence(s.ctx, SubmitEvidenceCommand{UserID: alice, SessionID: started.SessionID, Text: strongEvidence, ExpectedIndex: &i})
		s.Require().NoError(err)
		s.Equal(scoring.ConformityFull, res.Evaluation.Conformity)
		if i < 2 {
			s.False(res.Completed)
			s.Require().NotNil(res.NextQuestion)
			s.Equal(questions("SA", 3)[i+1].ID, res.NextQuestion.ID)
			continue
		}
		s.True(res.SessionCompleted)
		s.True(res.Completed)
		s.False(res.NeedsCategoryTransition)
		s.Nil(res.NextQuestion)
		s.Nil(res.RunProgress)
		s.Equal(3, res.Progress.Current)
	}

	sum, err := s.service.SessionSummary(s.ctx, alice, started.SessionID)
	s.Require().NoError(err)
	s.Equal(models.ConformityCounts{Full: 3}, sum.ConformityCounts)
	s.InDelta(100.0, sum.CompletionRate, 1e-9)

	s.Equal(3.0, testutil.ToFloat64(s.metrics.EvidenceScored.WithLabelValues(string(scoring.ConformityFull))))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CategoriesCompleted.WithLabelValues("Safe")))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.OpenSessions))
	s.Contains(s.actions(), string(audit.EventCategoryCompleted))
}

func (s *ServiceSuite) TestOutOfTurnCommands() {
	started, err := s.service.StartCategory(s.ctx, alice, "Safe")
	s.Require().NoError(err)

	_, err = s.service.SubmitEvidence(s.ctx, SubmitEvidenceCommand{UserID: alice, SessionID: started.SessionID, Text: strongEvidence})
	s.ErrorIs(err, models.ErrNotAwaitingEvidence)

	_, err = s.service.AnswerQuestion(s.ctx, AnswerCommand{UserID: alice, SessionID: started.SessionID, Text: "first"})
	s.Require().NoError(err)
	_, err = s.service.AnswerQuestion(s.ctx, AnswerCommand{UserID: alice, SessionID: started.SessionID, Text: "second"})
	s.ErrorIs(err, models.ErrNotAwaitingObservation)

	_, err = s.service.AnswerQuestion(s.ctx, AnswerCommand{UserID: "mallory", SessionID: started.SessionID, Text: "x"})
	s.ErrorIs(err, models.ErrUnknownSession)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	cur, err := s.service.CurrentQuestion(s.ctx, alice, started.SessionID)
	s.Require().NoError(err)
	s.Equal(models.StateAwaitingEvidence, cur.Progress.State)
}

func (s *ServiceSuite) TestMultiCategoryTransition() {
	started, err := s.service.StartMultiCategory(s.ctx, alice, []string{"Safe", "Privacy-Enhanced"})
	s.Require().NoError(err)
	s.Equal(category.Safe, started.Category)
	s.Equal("SA-01", started.Question.ID)
	s.Equal(2, started.RunProgress.TotalCategories)
	s.Equal([]category.Category{category.PrivacyEnhanced}, started.RunProgress.RemainingCategories)

	s.Run("continue before completion is rejected", func() {
		_, err := s.service.ContinueToNextCategory(s.ctx, alice)
		s.ErrorIs(err, models.ErrCategoryInProgress)
	})

	last := s.completeSession(started.SessionID, strongEvidence)
	s.True(last.SessionCompleted)
	s.False(last.Completed)
	s.True(last.NeedsCategoryTransition)
	s.Equal(category.PrivacyEnhanced, last.NextCategory)
	s.Require().NotNil(last.RunProgress)
	s.Equal(1, last.RunProgress.CompletedCount)
	s.Equal(models.RunStatusActive, last.RunProgress.Status)

	next, err := s.service.ContinueToNextCategory(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(category.PrivacyEnhanced, next.Category)
	s.Equal("PE-01", next.Question.ID)
	s.Equal(1, next.RunProgress.CompletedCount)

	final := s.completeSession(next.SessionID, "yes")
	s.True(final.Completed)
	s.False(final.NeedsCategoryTransition)
	s.Equal(models.RunStatusCompleted, final.RunProgress.Status)

	_, err = s.service.ContinueToNextCategory(s.ctx, alice)
	s.ErrorIs(err, models.ErrNoRemainingCategories)

	progress, err := s.service.RunProgress(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(2, progress.CompletedCount)

	s.Subset(s.actions(), []string{
		string(audit.EventMultiCategoryStarted),
		string(audit.EventCategoryAdvanced),
		string(audit.EventCategoryCompleted),
	})
}

func (s *ServiceSuite) TestStartMultiCategoryValidation() {
	tests := []struct {
		name  string
		names []string
		want  error
	}{
		{"single category", []string{"Safe"}, models.ErrTooFewCategories},
		{"duplicates collapse to one", []string{"Safe", " Safe "}, models.ErrTooFewCategories},
		{"unknown category", []string{"Safe", "Robust"}, models.ErrInvalidCategory},
		{"blank entry among valid ones", []string{"Safe", "", "Privacy-Enhanced"}, models.ErrInvalidCategory},
		{"whitespace entry", []string{"Safe", "   "}, models.ErrInvalidCategory},
		{"empty", nil, models.ErrTooFewCategories},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.StartMultiCategory(s.ctx, alice, tt.names)
			s.ErrorIs(err, tt.want)
		})
	}
}

func (s *ServiceSuite) TestOneUnfinishedRunPerUser() {
	_, err := s.service.StartMultiCategory(s.ctx, alice, []string{"Safe", "Privacy-Enhanced"})
	s.Require().NoError(err)
	_, err = s.service.StartMultiCategory(s.ctx, alice, []string{"Privacy-Enhanced", "Safe"})
	s.ErrorIs(err, models.ErrRunInProgress)
}

func (s *ServiceSuite) TestContinueWithoutRun() {
	_, err := s.service.ContinueToNextCategory(s.ctx, alice)
	s.ErrorIs(err, models.ErrNoActiveRun)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.service.RunProgress(s.ctx, alice)
	s.ErrorIs(err, models.ErrNoActiveRun)
}

func (s *ServiceSuite) TestMultiCategoryResumesOpenSession() {
	single, err := s.service.StartCategory(s.ctx, alice, "Safe")
	s.Require().NoError(err)

	run, err := s.service.StartMultiCategory(s.ctx, alice, []string{"Safe", "Privacy-Enhanced"})
	s.Require().NoError(err)
	s.True(run.Resumed)
	s.Equal(single.SessionID, run.SessionID)
}

func (s *ServiceSuite) TestGenerateAssessment() {
	_, err := s.service.GenerateAssessment(s.ctx, alice)
	s.ErrorIs(err, models.ErrNoCompletedSessions)

	safe, err := s.service.StartCategory(s.ctx, alice, "Safe")
	s.Require().NoError(err)
	s.completeSession(safe.SessionID, strongEvidence)

	privacy, err := s.service.StartCategory(s.ctx, alice, "Privacy-Enhanced")
	s.Require().NoError(err)
	s.completeSession(privacy.SessionID, "yes")

	a, err := s.service.GenerateAssessment(s.ctx, alice)
	s.Require().NoError(err)
	// 3 Full and 2 None: 300 / 5.
	s.InDelta(60.0, a.ComplianceScore, 1e-9)
	s.Equal(assessment.RiskMedium, a.RiskLevel)
	s.Equal(2, a.CategoriesAudited)
	s.Require().Len(a.RiskAreas, 1)
	s.Equal(category.PrivacyEnhanced, a.RiskAreas[0].Category)
	s.Equal(assessment.PriorityHigh, a.RiskAreas[0].Priority)
	s.Require().Len(a.Strengths, 1)
	s.Equal(category.Safe, a.Strengths[0].Category)
	s.Equal("Strengthen Privacy Controls & Data Protection", a.Recommendations[0].Title)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.AssessmentsGenerated.WithLabelValues("Medium")))
}

func (s *ServiceSuite) TestListCategories() {
	s.Equal(category.All(), s.service.ListCategories())
}

func TestQuestionBankUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	bank := mocks.NewMockBank(ctrl)
	bank.EXPECT().LoadQuestions(gomock.Any(), category.Safe).
		Return(nil, errors.Join(sentinel.ErrUnavailable, errors.New("connection refused"))).Times(2)

	reg := registry.New()
	svc := New(bank, reg)

	_, err := svc.StartCategory(context.Background(), alice, "Safe")
	if !errors.Is(err, models.ErrQuestionBankUnavailable) {
		t.Fatalf("expected question bank unavailable, got %v", err)
	}
	if !errors.Is(err, sentinel.ErrUnavailable) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}

	_, err = svc.StartMultiCategory(context.Background(), alice, []string{"Safe", "Privacy-Enhanced"})
	if !errors.Is(err, models.ErrQuestionBankUnavailable) {
		t.Fatalf("expected question bank unavailable, got %v", err)
	}
	if st := reg.Stats(); st.Sessions != 0 || st.Runs != 0 {
		t.Fatalf("expected nothing stored after failed loads, got %+v", st)
	}
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Emit(context.Context, audit.Event) error {
	p.calls++
	return errors.New("sink down")
}

func TestAuditEmissionIsBestEffort(t *testing.T) {
	bank := memory.New()
	bank.Put(category.Safe, questions("SA", 1))
	pub := &failingPublisher{}
	svc := New(bank, registry.New(), WithAuditPublisher(pub))

	res, err := svc.StartCategory(context.Background(), alice, "Safe")
	if err != nil {
		t.Fatalf("audit failure must not fail the command: %v", err)
	}
	if res.SessionID.IsNil() {
		t.Fatal("expected a session id")
	}
	if pub.calls != 1 {
		t.Fatalf("expected one emit attempt, got %d", pub.calls)
	}
}
