package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ListEditor performs copy-on-write edits on one list section. Every method
// returns a new Document and leaves its input untouched.
type ListEditor interface {
	Section() Section
	Len(doc Document) int
	// UpdateAt shallow-merges the JSON object patch into the record at index.
	UpdateAt(doc Document, index int, patch json.RawMessage) (Document, error)
	// Append decodes record and adds it to the end of the list.
	Append(doc Document, record json.RawMessage) (Document, error)
	// RemoveAt drops the record at index.
	RemoveAt(doc Document, index int) (Document, error)
	// RemoveMatching drops every record whose fields equal all criteria keys,
	// returning the number removed.
	RemoveMatching(doc Document, criteria json.RawMessage) (Document, int, error)
	// Replace swaps the whole list for the decoded JSON array.
	Replace(doc Document, records json.RawMessage) (Document, error)
}

// IndexError reports an index outside the current list bounds.
type IndexError struct {
	Section Section
	Index   int
	Len     int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (length %d)", e.Index, e.Section, e.Len)
}

// PayloadError reports data that cannot be decoded into the section's record shape.
type PayloadError struct {
	Section Section
	Message string
	Cause   error
}

func (e *PayloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s payload: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s payload: %s", e.Section, e.Message)
}

func (e *PayloadError) Unwrap() error {
	return e.Cause
}

var listEditors = map[Section]ListEditor{
	SectionJobs: listEditor[Job]{SectionJobs,
		func(d *Document) []Job { return d.Jobs }, func(d *Document, v []Job) { d.Jobs = v }},
	SectionEducations: listEditor[Education]{SectionEducations,
		func(d *Document) []Education { return d.Educations }, func(d *Document, v []Education) { d.Educations = v }},
	SectionSkills: listEditor[Skill]{SectionSkills,
		func(d *Document) []Skill { return d.Skills }, func(d *Document, v []Skill) { d.Skills = v }},
	SectionTools: listEditor[Tool]{SectionTools,
		func(d *Document) []Tool { return d.Tools }, func(d *Document, v []Tool) { d.Tools = v }},
	SectionLanguages: listEditor[Language]{SectionLanguages,
		func(d *Document) []Language { return d.Languages }, func(d *Document, v []Language) { d.Languages = v }},
	SectionCertificates: listEditor[Certificate]{SectionCertificates,
		func(d *Document) []Certificate { return d.Certificates }, func(d *Document, v []Certificate) { d.Certificates = v }},
	SectionExtracurriculars: listEditor[Extracurricular]{SectionExtracurriculars,
		func(d *Document) []Extracurricular { return d.Extracurriculars }, func(d *Document, v []Extracurricular) { d.Extracurriculars = v }},
}

// ListEditorFor returns the editor for a list section; ok is false for
// personalDetails and unknown names.
func ListEditorFor(s Section) (ListEditor, bool) {
	ed, ok := listEditors[s]
	return ed, ok
}

// MergePersonalDetails shallow-merges a JSON object into personalDetails.
// Keys in patch override; every other field keeps its value.
func MergePersonalDetails(doc Document, patch json.RawMessage) (Document, error) {
	merged, err := mergeRecord(doc.PersonalDetails, patch)
	if err != nil {
		return doc, &PayloadError{Section: SectionPersonalDetails, Message: "cannot merge update", Cause: err}
	}
	return SetSection(doc, SectionPersonalDetails, merged)
}

type listEditor[T any] struct {
	section Section
	get     func(*Document) []T
	set     func(*Document, []T)
}

func (l listEditor[T]) Section() Section { return l.section }

func (l listEditor[T]) Len(doc Document) int { return len(l.get(&doc)) }

func (l listEditor[T]) with(doc Document, list []T) Document {
	l.set(&doc, list)
	doc.normalize()
	return doc
}

func (l listEditor[T]) UpdateAt(doc Document, index int, patch json.RawMessage) (Document, error) {
	list := l.get(&doc)
	if index < 0 || index >= len(list) {
		return doc, &IndexError{Section: l.section, Index: index, Len: len(list)}
	}
	merged, err := mergeRecord(list[index], patch)
	if err != nil {
		return doc, &PayloadError{Section: l.section, Message: fmt.Sprintf("cannot merge update at index %d", index), Cause: err}
	}
	next := make([]T, len(list))
	copy(next, list)
	next[index] = merged
	return l.with(doc, next), nil
}

func (l listEditor[T]) Append(doc Document, record json.RawMessage) (Document, error) {
	if !isObject(record) {
		return doc, &PayloadError{Section: l.section, Message: "record must be a JSON object"}
	}
	rec, err := decodeRecord[T](record)
	if err != nil {
		return doc, &PayloadError{Section: l.section, Message: "cannot decode record", Cause: err}
	}
	list := l.get(&doc)
	next := make([]T, len(list), len(list)+1)
	copy(next, list)
	next = append(next, rec)
	return l.with(doc, next), nil
}

func (l listEditor[T]) RemoveAt(doc Document, index int) (Document, error) {
	list := l.get(&doc)
	if index < 0 || index >= len(list) {
		return doc, &IndexError{Section: l.section, Index: index, Len: len(list)}
	}
	next := make([]T, 0, len(list)-1)
	next = append(next, list[:index]...)
	next = append(next, list[index+1:]...)
	return l.with(doc, next), nil
}

func (l listEditor[T]) RemoveMatching(doc Document, criteria json.RawMessage) (Document, int, error) {
	var want map[string]any
	if err := json.Unmarshal(criteria, &want); err != nil || want == nil {
		return doc, 0, &PayloadError{Section: l.section, Message: "criteria must be a JSON object", Cause: err}
	}

	list := l.get(&doc)
	next := make([]T, 0, len(list))
	removed := 0
	for _, rec := range list {
		fields, err := recordFields(rec)
		if err != nil {
			return doc, 0, &PayloadError{Section: l.section, Message: "cannot encode record", Cause: err}
		}
		if matches(fields, want) {
			removed++
			continue
		}
		next = append(next, rec)
	}
	if removed == 0 {
		return doc, 0, nil
	}
	return l.with(doc, next), removed, nil
}

func (l listEditor[T]) Replace(doc Document, records json.RawMessage) (Document, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(records, &raw); err != nil {
		return doc, &PayloadError{Section: l.section, Message: "cannot decode section list", Cause: err}
	}
	if raw == nil {
		return doc, &PayloadError{Section: l.section, Message: "section list must be a JSON array"}
	}
	next := make([]T, 0, len(raw))
	for i, item := range raw {
		if !isObject(item) {
			return doc, &PayloadError{Section: l.section, Message: fmt.Sprintf("list item %d must be a JSON object", i)}
		}
		rec, err := decodeRecord[T](item)
		if err != nil {
			return doc, &PayloadError{Section: l.section, Message: fmt.Sprintf("cannot decode list item %d", i), Cause: err}
		}
		next = append(next, rec)
	}
	return l.with(doc, next), nil
}

// decodeRecord decodes one JSON object into a record, refusing keys the
// record does not have.
func decodeRecord[T any](raw json.RawMessage) (T, error) {
	var rec T
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return rec, err
	}
	if err := checkFields[T](keys); err != nil {
		return rec, err
	}
	err := json.Unmarshal(raw, &rec)
	return rec, err
}

// mergeRecord overlays the top-level keys of patch onto the JSON form of rec.
func mergeRecord[T any](rec T, patch json.RawMessage) (T, error) {
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return rec, err
	}
	if overlay == nil {
		return rec, fmt.Errorf("patch must be a JSON object")
	}
	if err := checkFields[T](overlay); err != nil {
		return rec, err
	}

	base, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return rec, err
	}
	for k, v := range overlay {
		fields[k] = v
	}

	combined, err := json.Marshal(fields)
	if err != nil {
		return rec, err
	}
	var out T
	if err := json.Unmarshal(combined, &out); err != nil {
		return rec, err
	}
	return out, nil
}

// UnknownFieldsError lists object keys that name no field of the record.
// Keys are matched exactly, so "JobTitle" is not "jobTitle".
type UnknownFieldsError struct {
	Keys []string
}

func (e *UnknownFieldsError) Error() string {
	return "unknown fields: " + strings.Join(e.Keys, ", ")
}

func checkFields[T any](obj map[string]json.RawMessage) error {
	known := fieldNames(reflect.TypeOf((*T)(nil)).Elem())
	var unknown []string
	for k := range obj {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &UnknownFieldsError{Keys: unknown}
}

var fieldNameCache sync.Map

// fieldNames returns the JSON object keys a record struct encodes to.
func fieldNames(t reflect.Type) map[string]bool {
	if cached, ok := fieldNameCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	fieldNameCache.Store(t, names)
	return names
}

// recordFields returns the decoded JSON object form of a record.
func recordFields[T any](rec T) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// matches reports whether every criteria key is present in fields with a
// deep-equal value.
func matches(fields, criteria map[string]any) bool {
	for k, want := range criteria {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
