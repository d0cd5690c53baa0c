// Package validator checks uploaded template files before the analysis
// pipeline touches them.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"DF-ANLZ/internal/docx"
)

// Result is the outcome of a validation pass. Warnings do not block the
// upload; errors do.
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator validates DOCX uploads against a configurable size ceiling. Admin
// and user upload paths construct separate validators with different ceilings.
type Validator struct {
	maxSize       int64
	minParagraphs int
}

// New returns a validator with the given size ceiling in bytes. Documents
// with fewer than minParagraphs text paragraphs produce a warning.
func New(maxSize int64, minParagraphs int) *Validator {
	return &Validator{maxSize: maxSize, minParagraphs: minParagraphs}
}

// Validate inspects the uploaded bytes. It has no side effects and the same
// input always yields the same result.
func (v *Validator) Validate(data []byte, filename string) Result {
	result := Result{IsValid: true}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".docx" {
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported file extension %q, only .docx is accepted", ext))
	}

	if v.maxSize > 0 && int64(len(data)) > v.maxSize {
		result.Errors = append(result.Errors, fmt.Sprintf("file size %d exceeds the %d byte limit", len(data), v.maxSize))
	}

	doc, err := docx.Open(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("file is not a readable word document: %v", err))
	} else if v.minParagraphs > 0 && doc.ParagraphCount() < v.minParagraphs {
		result.Warnings = append(result.Warnings, fmt.Sprintf("document has only %d text paragraphs, the template may be incomplete", doc.ParagraphCount()))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
