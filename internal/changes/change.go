// Package changes turns the structured edit proposals embedded in assistant
// replies into resume edits: ParseReply extracts candidates, Validate filters
// them into a Batch, and Apply folds the batch over a resume.Document.
package changes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// Action is what an instruction does to its section.
type Action string

// Supported actions.
const (
	ActionUpdate Action = "update"
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

func (a Action) valid() bool {
	return a == ActionUpdate || a == ActionAdd || a == ActionRemove
}

// Change is a candidate edit as proposed by the assistant. Nothing about it is
// trusted: section and action are free strings and index and data are kept as
// raw JSON until Validate inspects them.
type Change struct {
	Section     string          `json:"section"`
	Action      string          `json:"action"`
	Index       json.RawMessage `json:"index,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

// Label is a short human-readable description for review lists,
// e.g. "Add new item to jobs".
func (c Change) Label() string {
	name := strings.ReplaceAll(strings.TrimSpace(c.Section), "_", " ")
	if s, err := resume.ParseSection(c.Section); err == nil {
		name = s.Title()
	}

	switch Action(strings.ToLower(strings.TrimSpace(c.Action))) {
	case ActionAdd:
		return "Add new item to " + name
	case ActionRemove:
		return "Remove item from " + name
	case ActionUpdate:
		if name == resume.SectionPersonalDetails.Title() {
			return "Update " + name
		}
		return "Update item in " + name
	default:
		return "Modify " + name
	}
}

// Instruction is a validated edit. Instructions are only produced by
// Validate, so every Instruction names a known section and an action that
// section supports.
type Instruction struct {
	section     resume.Section
	action      Action
	index       int
	hasIndex    bool
	data        json.RawMessage
	explanation string
}

// Section returns the targeted section.
func (i Instruction) Section() resume.Section { return i.section }

// Action returns the instruction's action.
func (i Instruction) Action() Action { return i.action }

// Index returns the list position, if the instruction carries one.
func (i Instruction) Index() (int, bool) { return i.index, i.hasIndex }

// Data returns the raw payload; nil when absent.
func (i Instruction) Data() json.RawMessage { return i.data }

// Explanation returns the assistant's rationale, for display only.
func (i Instruction) Explanation() string { return i.explanation }

// Change converts the instruction back to its wire form.
func (i Instruction) Change() Change {
	c := Change{
		Section:     string(i.section),
		Action:      string(i.action),
		Data:        i.data,
		Explanation: i.explanation,
	}
	if i.hasIndex {
		c.Index = json.RawMessage(fmt.Sprintf("%d", i.index))
	}
	return c
}

// MarshalJSON encodes the instruction in the Change wire format.
func (i Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Change())
}

// Batch is an ordered list of validated instructions, applied left to right.
type Batch []Instruction

// Changes returns the wire form of every instruction in the batch.
func (b Batch) Changes() []Change {
	out := make([]Change, len(b))
	for i, ins := range b {
		out[i] = ins.Change()
	}
	return out
}
