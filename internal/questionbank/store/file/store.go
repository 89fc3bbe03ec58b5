// Package file loads a question bank from YAML. Without a path it serves the
// embedded default bank.
package file

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rmfaudit/internal/category"
	"rmfaudit/internal/questionbank"
)

//go:embed default_bank.yaml
var defaultBank []byte

type document struct {
	Categories []struct {
		Name      string                  `yaml:"name"`
		Questions []questionbank.Question `yaml:"questions"`
	} `yaml:"categories"`
}

// Store is an immutable Bank parsed once at construction.
type Store struct {
	questions map[category.Category][]questionbank.Question
}

// Load reads the bank at path, or the embedded default when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Parse(defaultBank)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a bank document. Unknown category names are rejected;
// questions with an empty sub-question are skipped.
func Parse(raw []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	s := &Store{questions: make(map[category.Category][]questionbank.Question)}
	for _, entry := range doc.Categories {
		c, err := category.Parse(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("question bank: %w", err)
		}
		for _, q := range entry.Questions {
			if strings.TrimSpace(q.SubQuestion) == "" {
				continue
			}
			s.questions[c] = append(s.questions[c], q)
		}
	}
	return s, nil
}

func (s *Store) LoadQuestions(_ context.Context, c category.Category) ([]questionbank.Question, error) {
	return questionbank.Clone(s.questions[c]), nil
}

// Categories returns the categories that have at least one question.
func (s *Store) Categories() []category.Category {
	var out []category.Category
	for _, c := range category.All() {
		if len(s.questions[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}
