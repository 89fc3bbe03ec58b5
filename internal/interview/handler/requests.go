package handler

import (
	"strings"

	"rmfaudit/internal/interview/models"
	dErrors "rmfaudit/pkg/domain-errors"
)

const (
	maxTextLength     = 20000
	maxSourceName     = 512
	maxCategoriesSent = 32
)

// StartCategoryRequest is the body of POST /audits/sessions.
type StartCategoryRequest struct {
	Category string `json:"category"`
}

func (r *StartCategoryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	return nil
}

// AnswerRequest is the body of POST /audits/sessions/{id}/observations.
type AnswerRequest struct {
	Text          string `json:"text"`
	ExpectedIndex *int   `json:"expected_index,omitempty"`
}

func (r *AnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Text) > maxTextLength {
		return dErrors.New(dErrors.CodeValidation, "text is too long")
	}
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return models.ErrEmptyText.Withf("text is required")
	}
	if r.ExpectedIndex != nil && *r.ExpectedIndex < 0 {
		return dErrors.New(dErrors.CodeValidation, "expected_index must not be negative")
	}
	return nil
}

// EvidenceSourceRequest describes where the evidence text was extracted from.
type EvidenceSourceRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// SubmitEvidenceRequest is the body of POST /audits/sessions/{id}/evidence.
type SubmitEvidenceRequest struct {
	Text          string                 `json:"text"`
	Source        *EvidenceSourceRequest `json:"source,omitempty"`
	ExpectedIndex *int                   `json:"expected_index,omitempty"`

	parsedSource models.EvidenceSource
}

func (r *SubmitEvidenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Text) > maxTextLength {
		return dErrors.New(dErrors.CodeValidation, "text is too long")
	}
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return models.ErrEmptyText.Withf("text is required")
	}
	if r.ExpectedIndex != nil && *r.ExpectedIndex < 0 {
		return dErrors.New(dErrors.CodeValidation, "expected_index must not be negative")
	}

	r.parsedSource = models.EvidenceSource{Kind: models.EvidenceSourceText}
	if r.Source != nil {
		kind := models.EvidenceSourceKind(strings.ToLower(strings.TrimSpace(r.Source.Kind)))
		if kind == "" {
			kind = models.EvidenceSourceText
		}
		if !kind.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "source.kind must be one of text, file, url")
		}
		name := strings.TrimSpace(r.Source.Name)
		if len(name) > maxSourceName {
			return dErrors.New(dErrors.CodeValidation, "source.name is too long")
		}
		r.parsedSource = models.EvidenceSource{Kind: kind, Name: name}
	}
	return nil
}

// ParsedSource returns the validated evidence source.
func (r *SubmitEvidenceRequest) ParsedSource() models.EvidenceSource {
	return r.parsedSource
}

// StartMultiCategoryRequest is the body of POST /audits/runs.
type StartMultiCategoryRequest struct {
	Categories []string `json:"categories"`
}

func (r *StartMultiCategoryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Categories) > maxCategoriesSent {
		return dErrors.New(dErrors.CodeValidation, "too many categories")
	}
	return nil
}
