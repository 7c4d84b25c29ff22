package changes

import (
	"fmt"
	"strings"
)

const noExplanation = "No explanation provided"

// Summarize renders the confirmation message shown after a batch is applied.
func Summarize(batch Batch) string {
	if len(batch) == 0 {
		return "No changes to apply."
	}

	lines := make([]string, 0, len(batch))
	for _, ins := range batch {
		section := strings.ToUpper(ins.section.Title())
		explanation := ins.explanation
		if explanation == "" {
			explanation = noExplanation
		}

		switch ins.action {
		case ActionRemove:
			lines = append(lines, fmt.Sprintf("• REMOVE from %s: %s", section, explanation))
		case ActionAdd:
			lines = append(lines, fmt.Sprintf("• ADD to %s: %s", section, explanation))
		default:
			lines = append(lines, fmt.Sprintf("• UPDATE %s: %s", section, explanation))
		}
	}
	return fmt.Sprintf("Applied %d change(s):\n%s", len(batch), strings.Join(lines, "\n"))
}

// Describe returns a one-line description of what an instruction will do.
func Describe(ins Instruction) string {
	name := ins.section.Title()
	switch ins.action {
	case ActionAdd:
		return "Add new item to " + name
	case ActionRemove:
		if ins.hasIndex {
			return "Remove item from " + name
		}
		return "Remove matching items from " + name
	default:
		if !ins.section.IsList() {
			return "Update " + name
		}
		if !ins.hasIndex {
			return "Replace all items in " + name
		}
		return "Update item in " + name
	}
}
