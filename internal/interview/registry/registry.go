// Package registry is the synchronized home of every live AuditSession and
// MultiCategoryRun.
//
// One RWMutex guards all maps so that commands touching a session and its run
// commit together. Callers only ever receive clones; mutation goes through
// the Execute-style methods, which apply a callback to working copies and
// commit them only when the callback succeeds.
//
// A user's sessions and runs are evicted together once the user has been idle
// for the retention TTL. Eviction is lazy (on every write) plus Sweep.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"rmfaudit/internal/category"
	"rmfaudit/internal/interview/models"
	id "rmfaudit/pkg/domain"
	"rmfaudit/pkg/platform/sentinel"
	"rmfaudit/pkg/requestcontext"
)

const DefaultRetentionTTL = 24 * time.Hour

type openKey struct {
	user     id.UserID
	category category.Category
}

type Registry struct {
	mu sync.RWMutex

	sessions map[id.SessionID]*models.AuditSession
	open     map[openKey]id.SessionID
	runs     map[id.RunID]*models.MultiCategoryRun
	userRun  map[id.UserID]id.RunID
	activity map[id.UserID]time.Time

	ttl time.Duration
}

type Option func(*Registry)

// WithRetentionTTL sets the idle period after which a user's data is dropped.
// Zero disables eviction.
func WithRetentionTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[id.SessionID]*models.AuditSession),
		open:     make(map[openKey]id.SessionID),
		runs:     make(map[id.RunID]*models.MultiCategoryRun),
		userRun:  make(map[id.UserID]id.RunID),
		activity: make(map[id.UserID]time.Time),
		ttl:      DefaultRetentionTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats reports registry sizes.
type Stats struct {
	Sessions     int
	OpenSessions int
	Runs         int
	Users        int
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Sessions:     len(r.sessions),
		OpenSessions: len(r.open),
		Runs:         len(r.runs),
		Users:        len(r.activity),
	}
}

// Session returns a copy of the session if it exists and belongs to userID.
func (r *Registry) Session(_ context.Context, sessionID id.SessionID, userID id.UserID) (*models.AuditSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.ownedSessionLocked(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// OpenSession returns the user's unfinished session for c, if any.
func (r *Registry) OpenSession(_ context.Context, userID id.UserID, c category.Category) (*models.AuditSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.open[openKey{userID, c}]
	if !ok {
		return nil, false
	}
	return r.sessions[sid].Clone(), true
}

// LatestRun returns the user's most recent run.
func (r *Registry) LatestRun(_ context.Context, userID id.UserID) (*models.MultiCategoryRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.latestRunLocked(userID)
	if !ok {
		return nil, fmt.Errorf("run of user %s: %w", userID, sentinel.ErrNotFound)
	}
	return run.Clone(), nil
}

// CompletedSessions returns the user's completed sessions, oldest completion first.
func (r *Registry) CompletedSessions(_ context.Context, userID id.UserID) []*models.AuditSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.AuditSession
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsCompleted() {
			out = append(out, s.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.AuditSession) int {
		if c := a.CompletedAt.Compare(*b.CompletedAt); c != 0 {
			return c
		}
		return a.StartedAt.Compare(b.StartedAt)
	})
	return out
}

// CreateSession stores candidate unless the user already has an unfinished
// session for the same category, in which case that one is returned with
// resumed=true and candidate is discarded.
func (r *Registry) CreateSession(ctx context.Context, candidate *models.AuditSession) (*models.AuditSession, bool) {
	now := requestcontext.Now(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	r.touchLocked(candidate.UserID, now)

	if existing, ok := r.resolveLocked(candidate); ok {
		return existing.Clone(), true
	}
	r.insertLocked(candidate.Clone())
	return candidate.Clone(), false
}

// CreateRun stores a new run with its first session. first is replaced by
// the user's unfinished session for that category when one exists. A user may
// own only one unfinished run.
func (r *Registry) CreateRun(ctx context.Context, run *models.MultiCategoryRun, first *models.AuditSession) (*models.MultiCategoryRun, *models.AuditSession, bool, error) {
	now := requestcontext.Now(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)

	if current, ok := r.latestRunLocked(run.UserID); ok && !current.IsFinished() {
		return nil, nil, false, models.ErrRunInProgress.Withf("run %s is still in progress", current.ID)
	}
	r.touchLocked(run.UserID, now)

	run = run.Clone()
	session, resumed := r.attachLocked(run, first, now)
	r.runs[run.ID] = run
	r.userRun[run.UserID] = run.ID
	return run.Clone(), session.Clone(), resumed, nil
}

// AdvanceRun moves the user's run to its next category and binds next (or
// the user's unfinished session for that category) to it. expectedIndex is
// the ActiveIndex the caller based its decision on.
func (r *Registry) AdvanceRun(ctx context.Context, userID id.UserID, expectedIndex int, next *models.AuditSession) (*models.MultiCategoryRun, *models.AuditSession, bool, error) {
	now := requestcontext.Now(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)

	current, ok := r.latestRunLocked(userID)
	if !ok {
		return nil, nil, false, fmt.Errorf("run of user %s: %w", userID, sentinel.ErrNotFound)
	}
	if current.ActiveIndex != expectedIndex {
		return nil, nil, false, models.ErrStaleSessionState.Withf("run moved to category %q", current.ActiveCategory())
	}
	run := current.Clone()
	if err := run.CanAdvance(); err != nil {
		return nil, nil, false, err
	}
	if run.Categories[run.ActiveIndex+1] != next.Category {
		return nil, nil, false, models.ErrStaleSessionState.Withf("run expects category %q", run.Categories[run.ActiveIndex+1])
	}
	r.touchLocked(userID, now)

	run.ApplyAdvance(now)
	session, resumed := r.attachLocked(run, next, now)
	r.runs[run.ID] = run
	return run.Clone(), session.Clone(), resumed, nil
}

// SessionMutation is applied to working copies of a session and, when the
// session is the active session of the user's run, that run (nil otherwise).
type SessionMutation func(s *models.AuditSession, run *models.MultiCategoryRun) error

// ExecuteSession runs fn under the write lock and commits both copies only
// when fn returns nil, so a failing command leaves no trace.
func (r *Registry) ExecuteSession(ctx context.Context, sessionID id.SessionID, userID id.UserID, fn SessionMutation) (*models.AuditSession, *models.MultiCategoryRun, error) {
	now := requestcontext.Now(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)

	stored, err := r.ownedSessionLocked(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	session := stored.Clone()
	var run *models.MultiCategoryRun
	if current, ok := r.latestRunLocked(userID); ok {
		if sid, bound := current.ActiveSession(); bound && sid == sessionID {
			run = current.Clone()
		}
	}

	if err := fn(session, run); err != nil {
		return nil, nil, err
	}

	r.touchLocked(userID, now)
	r.sessions[session.ID] = session
	if session.IsCompleted() {
		delete(r.open, openKey{session.UserID, session.Category})
	}
	if run != nil {
		r.runs[run.ID] = run
	}
	return session.Clone(), run.Clone(), nil
}

// Sweep evicts users idle for longer than the retention TTL and reports how
// many sessions were dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

func (r *Registry) sweepLocked(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	var expired []id.UserID
	for user, last := range r.activity {
		if now.Sub(last) >= r.ttl {
			expired = append(expired, user)
		}
	}
	if len(expired) == 0 {
		return 0
	}
	dropped := 0
	for _, user := range expired {
		for sid, s := range r.sessions {
			if s.UserID == user {
				delete(r.sessions, sid)
				dropped++
			}
		}
		for key := range r.open {
			if key.user == user {
				delete(r.open, key)
			}
		}
		for rid, run := range r.runs {
			if run.UserID == user {
				delete(r.runs, rid)
			}
		}
		delete(r.userRun, user)
		delete(r.activity, user)
	}
	return dropped
}

func (r *Registry) touchLocked(user id.UserID, now time.Time) {
	if last, ok := r.activity[user]; !ok || now.After(last) {
		r.activity[user] = now
	}
}

// attachLocked binds candidate (or the existing open session for its
// category) to run's active category. A candidate whose ID is already stored
// is a copy read outside the lock: the stored session wins, even when it has
// completed since. A session that is already completed completes the
// category immediately.
func (r *Registry) attachLocked(run *models.MultiCategoryRun, candidate *models.AuditSession, now time.Time) (*models.AuditSession, bool) {
	session, resumed := r.resolveLocked(candidate)
	if !resumed {
		session = candidate.Clone()
		r.insertLocked(session)
	}
	run.BindSession(run.ActiveCategory(), session.ID, now)
	if session.IsCompleted() {
		run.MarkActiveCategoryCompleted(now)
	}
	return session, resumed
}

// resolveLocked returns the stored session candidate stands for: the session
// with its ID, or else the user's open session for its category.
func (r *Registry) resolveLocked(candidate *models.AuditSession) (*models.AuditSession, bool) {
	if stored, ok := r.sessions[candidate.ID]; ok && stored.UserID == candidate.UserID {
		return stored, true
	}
	return r.openSessionLocked(candidate.UserID, candidate.Category)
}

func (r *Registry) insertLocked(s *models.AuditSession) {
	r.sessions[s.ID] = s
	if !s.IsCompleted() {
		r.open[openKey{s.UserID, s.Category}] = s.ID
	}
}

func (r *Registry) openSessionLocked(user id.UserID, c category.Category) (*models.AuditSession, bool) {
	sid, ok := r.open[openKey{user, c}]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[sid]
	return s, ok
}

// ownedSessionLocked hides sessions of other users behind the same error as
// missing ones.
func (r *Registry) ownedSessionLocked(sessionID id.SessionID, userID id.UserID) (*models.AuditSession, error) {
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("audit session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return s, nil
}

func (r *Registry) latestRunLocked(user id.UserID) (*models.MultiCategoryRun, bool) {
	rid, ok := r.userRun[user]
	if !ok {
		return nil, false
	}
	run, ok := r.runs[rid]
	return run, ok
}
