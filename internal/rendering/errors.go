// Package rendering produces LaTeX previews of resume documents.
package rendering

import (
	"errors"
	"fmt"
	"io/fs"
)

// builtinTemplate names the embedded template in errors.
const builtinTemplate = "built-in"

// TemplateError reports a preview template that could not be loaded.
type TemplateError struct {
	// Template is the template file path, or "built-in".
	Template string
	// Op is the failed step: "read" or "parse".
	Op    string
	Cause error
}

func (e *TemplateError) Error() string {
	if e.Op == "read" && errors.Is(e.Cause, fs.ErrNotExist) {
		return fmt.Sprintf("preview template file not found: %s", e.Template)
	}
	return fmt.Sprintf("failed to %s preview template %s: %v", e.Op, e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError reports a document that a loaded template could not render.
type RenderError struct {
	Template string
	// DocumentID is empty for documents that were never saved.
	DocumentID string
	Cause      error
}

func (e *RenderError) Error() string {
	doc := "unsaved resume"
	if e.DocumentID != "" {
		doc = "resume " + e.DocumentID
	}
	return fmt.Sprintf("failed to render preview of %s with template %s: %v", doc, e.Template, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
