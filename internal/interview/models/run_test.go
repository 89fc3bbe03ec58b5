package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmfaudit/internal/category"
	id "rmfaudit/pkg/domain"
)

func newRun(t *testing.T, cats ...category.Category) *MultiCategoryRun {
	t.Helper()
	r, err := NewMultiCategoryRun(id.NewRunID(), "alice", cats, t0)
	require.NoError(t, err)
	return r
}

func TestNewMultiCategoryRun(t *testing.T) {
	_, err := NewMultiCategoryRun(id.NewRunID(), "alice", []category.Category{category.Safe}, t0)
	assert.ErrorIs(t, err, ErrTooFewCategories)

	_, err = NewMultiCategoryRun(id.NewRunID(), "alice", []category.Category{category.Safe, "Robust"}, t0)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	r := newRun(t, category.Safe, category.PrivacyEnhanced)
	assert.Equal(t, category.Safe, r.ActiveCategory())
	assert.False(t, r.IsFinished())
}

func TestMultiCategoryRun_Transition(t *testing.T) {
	r := newRun(t, category.Safe, category.PrivacyEnhanced)

	_, err := r.Advance(t0)
	require.ErrorIs(t, err, ErrCategoryInProgress)
	assert.Equal(t, 0, r.ActiveIndex)

	assert.True(t, r.MarkActiveCategoryCompleted(t0))
	assert.False(t, r.IsFinished())

	next, err := r.Advance(t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, category.PrivacyEnhanced, next)

	p := r.ProgressSummary()
	assert.Equal(t, 1, p.CompletedCount)
	assert.Equal(t, category.PrivacyEnhanced, p.CurrentCategory)
	assert.Empty(t, p.RemainingCategories)
	assert.Equal(t, RunStatusActive, p.Status)

	r.MarkActiveCategoryCompleted(t0)
	assert.True(t, r.IsFinished())
	_, err = r.Advance(t0)
	require.ErrorIs(t, err, ErrNoRemainingCategories)
	assert.Equal(t, 1, r.ActiveIndex)
	assert.Equal(t, RunStatusCompleted, r.ProgressSummary().Status)
}

func TestMultiCategoryRun_CompletionIsIdempotent(t *testing.T) {
	r := newRun(t, category.Safe, category.PrivacyEnhanced, category.Explainable)
	assert.True(t, r.MarkActiveCategoryCompleted(t0))
	assert.False(t, r.MarkActiveCategoryCompleted(t0))
	assert.Equal(t, []category.Category{category.Safe}, r.CompletedCategories)
}

func TestMultiCategoryRun_ProgressSummary(t *testing.T) {
	r := newRun(t, category.Safe, category.PrivacyEnhanced, category.Explainable)
	p := r.ProgressSummary()
	assert.Equal(t, RunProgress{
		RunID:               r.ID,
		TotalCategories:     3,
		CompletedCount:      0,
		CurrentCategory:     category.Safe,
		RemainingCategories: []category.Category{category.PrivacyEnhanced, category.Explainable},
		CompletedCategories: []category.Category{},
		Status:              RunStatusActive,
	}, p)

	next, ok := r.NextCategory()
	assert.True(t, ok)
	assert.Equal(t, category.PrivacyEnhanced, next)

	// The summary is a copy.
	p.RemainingCategories[0] = "mutated"
	assert.Equal(t, category.PrivacyEnhanced, r.Categories[1])
}

func TestMultiCategoryRun_CloneIsDeep(t *testing.T) {
	r := newRun(t, category.Safe, category.PrivacyEnhanced)
	sid := id.NewSessionID()
	r.BindSession(category.Safe, sid, t0)

	cp := r.Clone()
	cp.Sessions[category.PrivacyEnhanced] = id.NewSessionID()
	cp.Categories[0] = "mutated"

	assert.Len(t, r.Sessions, 1)
	got, ok := r.ActiveSession()
	assert.True(t, ok)
	assert.Equal(t, sid, got)
	assert.Equal(t, category.Safe, r.Categories[0])
}
