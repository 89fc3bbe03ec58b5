package memory

import (
	"context"
	"sync"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
)

// Store is an in-memory Bank, used for tests and for seeding other sources.
type Store struct {
	mu        sync.RWMutex
	questions map[category.Category][]questionbank.Question
}

func New() *Store {
	return &Store{questions: make(map[category.Category][]questionbank.Question)}
}

// Put replaces the questions for c.
func (s *Store) Put(c category.Category, qs []questionbank.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[c] = questionbank.Clone(qs)
}

func (s *Store) LoadQuestions(_ context.Context, c category.Category) ([]questionbank.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return questionbank.Clone(s.questions[c]), nil
}
