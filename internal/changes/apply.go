package changes

import (
	"fmt"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// Warning describes an instruction that was skipped during Apply.
type Warning struct {
	Position int            `json:"position"`
	Section  resume.Section `json:"section"`
	Action   Action         `json:"action"`
	Message  string         `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("change %d (%s %s) skipped: %s", w.Position, w.Action, w.Section, w.Message)
}

// ApplyOptions controls batch semantics.
type ApplyOptions struct {
	// Atomic abandons the whole batch at the first instruction that cannot
	// be applied and returns the input document unchanged.
	Atomic bool
}

// Apply folds the batch over doc from left to right and returns the new
// document. Each instruction sees the effects of the ones before it. An
// instruction that cannot be applied is skipped with a warning and the rest
// of the batch still runs. doc itself is never modified.
func Apply(doc resume.Document, batch Batch) (resume.Document, []Warning) {
	out, warnings, _ := ApplyWithOptions(doc, batch, ApplyOptions{})
	return out, warnings
}

// ApplyWithOptions is Apply with configurable batch semantics. In atomic mode
// the returned error is the *ApplyError that aborted the batch.
func ApplyWithOptions(doc resume.Document, batch Batch, opts ApplyOptions) (resume.Document, []Warning, error) {
	current := doc
	var warnings []Warning
	for pos, ins := range batch {
		next, err := applyOne(current, ins)
		if err != nil {
			warnings = append(warnings, Warning{
				Position: pos,
				Section:  ins.section,
				Action:   ins.action,
				Message:  err.Error(),
			})
			if opts.Atomic {
				return doc, warnings, &ApplyError{
					Position: pos,
					Section:  ins.section,
					Action:   ins.action,
					Message:  "batch abandoned",
					Cause:    err,
				}
			}
			continue
		}
		current = next
	}
	return current, warnings, nil
}

func applyOne(doc resume.Document, ins Instruction) (resume.Document, error) {
	if ins.section == resume.SectionPersonalDetails {
		if ins.action != ActionUpdate {
			return doc, fmt.Errorf("unsupported action %q", ins.action)
		}
		return resume.MergePersonalDetails(doc, ins.data)
	}

	ed, ok := resume.ListEditorFor(ins.section)
	if !ok {
		return doc, &resume.UnknownSectionError{Name: string(ins.section)}
	}

	switch ins.action {
	case ActionUpdate:
		if ins.hasIndex {
			return ed.UpdateAt(doc, ins.index, ins.data)
		}
		return ed.Replace(doc, ins.data)
	case ActionAdd:
		return ed.Append(doc, ins.data)
	case ActionRemove:
		if ins.hasIndex {
			return ed.RemoveAt(doc, ins.index)
		}
		next, removed, err := ed.RemoveMatching(doc, ins.data)
		if err != nil {
			return doc, err
		}
		if removed == 0 {
			return doc, fmt.Errorf("no %s records match the criteria", ins.section)
		}
		return next, nil
	default:
		return doc, fmt.Errorf("unsupported action %q", ins.action)
	}
}

// Succeeded returns the instructions of batch that produced no warning.
func Succeeded(batch Batch, warnings []Warning) Batch {
	failed := make(map[int]bool, len(warnings))
	for _, w := range warnings {
		failed[w.Position] = true
	}
	out := make(Batch, 0, len(batch))
	for i, ins := range batch {
		if !failed[i] {
			out = append(out, ins)
		}
	}
	return out
}
