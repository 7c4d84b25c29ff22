package changes

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// Rejection records a candidate that Validate dropped.
type Rejection struct {
	Position int    `json:"position"`
	Change   Change `json:"change"`
	Reason   string `json:"reason"`
}

// Validate checks each candidate structurally, without looking at any
// document, and returns the valid ones as a Batch in their original order.
// Every dropped candidate gets a Rejection.
func Validate(candidates []Change) (Batch, []Rejection) {
	batch := make(Batch, 0, len(candidates))
	var rejected []Rejection
	for i, c := range candidates {
		ins, err := ValidateOne(c)
		if err != nil {
			rejected = append(rejected, Rejection{Position: i, Change: c, Reason: err.Error()})
			continue
		}
		batch = append(batch, ins)
	}
	return batch, rejected
}

// ValidateOne validates a single candidate. The error is a *ValidationError.
func ValidateOne(c Change) (Instruction, error) {
	reject := func(msg string, cause error) (Instruction, error) {
		return Instruction{}, &ValidationError{Section: c.Section, Action: c.Action, Message: msg, Cause: cause}
	}

	section, err := resume.ParseSection(c.Section)
	if err != nil {
		return reject("unknown section", nil)
	}
	action := Action(strings.ToLower(strings.TrimSpace(c.Action)))
	if !action.valid() {
		return reject("unknown action", nil)
	}

	ins := Instruction{
		section:     section,
		action:      action,
		explanation: c.Explanation,
	}

	// A non-numeric index is treated as absent.
	if idx := gjson.ParseBytes(bytes.TrimSpace(c.Index)); len(bytes.TrimSpace(c.Index)) > 0 && idx.Type == gjson.Number {
		f := idx.Num
		if f < 0 || f != math.Trunc(f) {
			return reject("index must be a non-negative integer", nil)
		}
		// bounds are checked against the live list when applying
		ins.index = math.MaxInt
		if f < float64(math.MaxInt) {
			ins.index = int(f)
		}
		ins.hasIndex = true
	}

	kind := payloadKind(c.Data)
	if kind != kindNone {
		ins.data = append(json.RawMessage(nil), bytes.TrimSpace(c.Data)...)
	}

	if section == resume.SectionPersonalDetails {
		switch {
		case action != ActionUpdate:
			return reject("personalDetails can only be updated", nil)
		case ins.hasIndex:
			return reject("personalDetails does not take an index", nil)
		case kind != kindObject:
			return reject("update requires an object of fields", nil)
		}
		return ins, nil
	}

	switch action {
	case ActionUpdate:
		switch {
		case kind == kindNone:
			return reject("update requires data", nil)
		case ins.hasIndex && kind != kindObject:
			return reject("update at an index requires an object of fields", nil)
		case !ins.hasIndex && kind != kindArray:
			return reject("update requires an index, or an array of records to replace the section", nil)
		}
	case ActionAdd:
		if kind != kindObject {
			return reject("add requires an object record", nil)
		}
		// add always appends
		ins.index, ins.hasIndex = 0, false
	case ActionRemove:
		if ins.hasIndex {
			break
		}
		if kind != kindObject || len(gjson.ParseBytes(ins.data).Map()) == 0 {
			return reject("remove requires an index or non-empty match criteria", nil)
		}
	}
	return ins, nil
}

type dataKind int

const (
	kindNone dataKind = iota
	kindObject
	kindArray
	kindScalar
)

// payloadKind classifies raw data; JSON null counts as absent.
func payloadKind(raw json.RawMessage) dataKind {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return kindNone
	}
	r := gjson.ParseBytes(trimmed)
	switch {
	case r.Type == gjson.Null:
		return kindNone
	case r.IsObject():
		return kindObject
	case r.IsArray():
		return kindArray
	default:
		return kindScalar
	}
}
