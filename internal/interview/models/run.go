package models

import (
	"slices"
	"time"

	"rmfaudit/internal/category"
	id "rmfaudit/pkg/domain"
)

// MultiCategoryRun sequences several categories for one user, one active
// session at a time, in the order supplied.
//
// Invariants:
//   - ActiveIndex < len(Categories)
//   - a category appears in CompletedCategories at most once, and only after
//     its session completed
type MultiCategoryRun struct {
	ID                  id.RunID
	UserID              id.UserID
	Categories          []category.Category
	ActiveIndex         int
	CompletedCategories []category.Category
	// Sessions maps each started category to its session. It does not own them.
	Sessions     map[category.Category]id.SessionID
	StartedAt    time.Time
	LastActivity time.Time
}

// NewMultiCategoryRun expects categories already parsed and de-duplicated.
func NewMultiCategoryRun(runID id.RunID, userID id.UserID, categories []category.Category, now time.Time) (*MultiCategoryRun, error) {
	if len(categories) < 2 {
		return nil, ErrTooFewCategories
	}
	for _, c := range categories {
		if !c.IsValid() {
			return nil, ErrInvalidCategory.Withf("invalid category %q", c)
		}
	}
	return &MultiCategoryRun{
		ID:                  runID,
		UserID:              userID,
		Categories:          slices.Clone(categories),
		CompletedCategories: []category.Category{},
		Sessions:            make(map[category.Category]id.SessionID, len(categories)),
		StartedAt:           now,
		LastActivity:        now,
	}, nil
}

func (r *MultiCategoryRun) ActiveCategory() category.Category {
	return r.Categories[r.ActiveIndex]
}

// ActiveSession returns the session bound to the active category, if any.
func (r *MultiCategoryRun) ActiveSession() (id.SessionID, bool) {
	sid, ok := r.Sessions[r.ActiveCategory()]
	return sid, ok
}

// NextCategory is the category Advance would move to.
func (r *MultiCategoryRun) NextCategory() (category.Category, bool) {
	if r.ActiveIndex+1 >= len(r.Categories) {
		return "", false
	}
	return r.Categories[r.ActiveIndex+1], true
}

func (r *MultiCategoryRun) BindSession(c category.Category, sessionID id.SessionID, now time.Time) {
	r.Sessions[c] = sessionID
	r.LastActivity = now
}

// MarkActiveCategoryCompleted records the active category as done. Repeated
// calls are no-ops; it reports whether anything changed.
func (r *MultiCategoryRun) MarkActiveCategoryCompleted(now time.Time) bool {
	c := r.ActiveCategory()
	if slices.Contains(r.CompletedCategories, c) {
		return false
	}
	r.CompletedCategories = append(r.CompletedCategories, c)
	r.LastActivity = now
	return true
}

func (r *MultiCategoryRun) IsActiveCategoryCompleted() bool {
	return slices.Contains(r.CompletedCategories, r.ActiveCategory())
}

func (r *MultiCategoryRun) CanAdvance() error {
	if !r.IsActiveCategoryCompleted() {
		return ErrCategoryInProgress.Withf("category %q is not completed yet", r.ActiveCategory())
	}
	if r.ActiveIndex+1 >= len(r.Categories) {
		return ErrNoRemainingCategories
	}
	return nil
}

func (r *MultiCategoryRun) ApplyAdvance(now time.Time) category.Category {
	r.ActiveIndex++
	r.LastActivity = now
	return r.ActiveCategory()
}

// Advance moves to the next category and returns it.
func (r *MultiCategoryRun) Advance(now time.Time) (category.Category, error) {
	if err := r.CanAdvance(); err != nil {
		return "", err
	}
	return r.ApplyAdvance(now), nil
}

func (r *MultiCategoryRun) IsFinished() bool {
	return len(r.CompletedCategories) >= len(r.Categories)
}

// RunProgress summarizes a run for clients.
type RunProgress struct {
	RunID               id.RunID            `json:"run_id"`
	TotalCategories     int                 `json:"total_categories"`
	CompletedCount      int                 `json:"completed_count"`
	CurrentCategory     category.Category   `json:"current_category"`
	RemainingCategories []category.Category `json:"remaining_categories"`
	CompletedCategories []category.Category `json:"completed_categories"`
	Status              RunStatus           `json:"status"`
}

func (r *MultiCategoryRun) ProgressSummary() RunProgress {
	status := RunStatusActive
	if r.IsFinished() {
		status = RunStatusCompleted
	}
	return RunProgress{
		RunID:               r.ID,
		TotalCategories:     len(r.Categories),
		CompletedCount:      len(r.CompletedCategories),
		CurrentCategory:     r.ActiveCategory(),
		RemainingCategories: slices.Clone(r.Categories[r.ActiveIndex+1:]),
		CompletedCategories: slices.Clone(r.CompletedCategories),
		Status:              status,
	}
}

// Clone returns a deep copy.
func (r *MultiCategoryRun) Clone() *MultiCategoryRun {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Categories = slices.Clone(r.Categories)
	cp.CompletedCategories = slices.Clone(r.CompletedCategories)
	cp.Sessions = make(map[category.Category]id.SessionID, len(r.Sessions))
	for c, sid := range r.Sessions {
		cp.Sessions[c] = sid
	}
	return &cp
}
