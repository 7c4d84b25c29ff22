package resume

import (
	"fmt"
)

// GetSection returns the current value of a section: PersonalDetails for the
// scalar section, the typed slice (never nil) for list sections.
func GetSection(doc Document, s Section) (any, error) {
	doc.normalize()
	switch s {
	case SectionPersonalDetails:
		return doc.PersonalDetails, nil
	case SectionJobs:
		return doc.Jobs, nil
	case SectionEducations:
		return doc.Educations, nil
	case SectionSkills:
		return doc.Skills, nil
	case SectionTools:
		return doc.Tools, nil
	case SectionLanguages:
		return doc.Languages, nil
	case SectionCertificates:
		return doc.Certificates, nil
	case SectionExtracurriculars:
		return doc.Extracurriculars, nil
	default:
		return nil, &UnknownSectionError{Name: string(s)}
	}
}

// SetSection returns a copy of doc with one section replaced by a fresh copy
// of value. The input document is never modified; untouched sections are shared.
func SetSection(doc Document, s Section, value any) (Document, error) {
	out := doc
	var ok bool
	switch s {
	case SectionPersonalDetails:
		var v PersonalDetails
		if v, ok = value.(PersonalDetails); ok {
			out.PersonalDetails = v
		}
	case SectionJobs:
		ok = setList(&out.Jobs, value)
	case SectionEducations:
		ok = setList(&out.Educations, value)
	case SectionSkills:
		ok = setList(&out.Skills, value)
	case SectionTools:
		ok = setList(&out.Tools, value)
	case SectionLanguages:
		ok = setList(&out.Languages, value)
	case SectionCertificates:
		ok = setList(&out.Certificates, value)
	case SectionExtracurriculars:
		ok = setList(&out.Extracurriculars, value)
	default:
		return doc, &UnknownSectionError{Name: string(s)}
	}
	if !ok {
		return doc, fmt.Errorf("cannot set section %s from %T", s, value)
	}
	out.normalize()
	return out, nil
}

func setList[T any](dst *[]T, value any) bool {
	list, ok := value.([]T)
	if !ok {
		return false
	}
	fresh := make([]T, len(list))
	copy(fresh, list)
	*dst = fresh
	return true
}

// Len returns the length of a list section, or 0 for personalDetails.
func Len(doc Document, s Section) int {
	if ed, ok := ListEditorFor(s); ok {
		return ed.Len(doc)
	}
	return 0
}
