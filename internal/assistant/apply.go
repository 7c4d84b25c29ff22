package assistant

import (
	"context"

	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/resume"
)

// Saver persists a document and returns its identifier in the store.
type Saver interface {
	Save(ctx context.Context, doc resume.Document) (string, error)
}

// Store is a Saver that can also load documents back. Stores own document
// IDs: the ID a Store returns is adopted into the saved document.
type Store interface {
	Saver
	Load(ctx context.Context, id string) (resume.Document, error)
}

// Result is the outcome of applying a set of candidate changes.
type Result struct {
	Document   resume.Document     `json:"document"`
	Applied    changes.Batch       `json:"applied"`
	Rejections []changes.Rejection `json:"rejections,omitempty"`
	Warnings   []changes.Warning   `json:"warnings,omitempty"`
	Issues     []resume.Issue      `json:"issues,omitempty"`
	Summary    string              `json:"summary"`
	SavedID    string              `json:"saved_id,omitempty"`
}

// ApplyAndPersist validates the candidates, applies the valid ones to doc in
// order and saves the result with saver when it is non-nil. The result is
// always returned, even with an error: a *SaveError means the document was
// changed but not stored, and in atomic mode a *changes.ApplyError means the
// batch was abandoned and Document is doc unchanged.
func (a *Assistant) ApplyAndPersist(ctx context.Context, doc resume.Document, candidates []changes.Change, saver Saver) (*Result, error) {
	batch, rejections := changes.Validate(candidates)
	for _, r := range rejections {
		a.log.Warn("change rejected",
			"position", r.Position, "section", r.Change.Section, "action", r.Change.Action, "reason", r.Reason)
	}

	next, warnings, applyErr := changes.ApplyWithOptions(doc, batch, changes.ApplyOptions{Atomic: a.atomic})
	for _, w := range warnings {
		a.log.Warn("change skipped",
			"position", w.Position, "section", w.Section, "action", w.Action, "reason", w.Message)
	}

	applied := changes.Succeeded(batch, warnings)
	if applyErr != nil {
		applied = changes.Batch{}
	}
	result := &Result{
		Document:   next,
		Applied:    applied,
		Rejections: rejections,
		Warnings:   warnings,
		Issues:     next.Validate(),
		Summary:    changes.Summarize(applied),
	}
	if applyErr != nil {
		return result, applyErr
	}
	if saver == nil || len(applied) == 0 {
		return result, nil
	}

	id, err := saver.Save(ctx, result.Document)
	if err != nil {
		a.log.Error("failed to save resume", "error", err)
		return result, &SaveError{Cause: err}
	}
	result.SavedID = id
	if _, ok := saver.(Store); ok {
		result.Document.ID = id
	}
	return result, nil
}
