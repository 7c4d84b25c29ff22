// Package resume defines the in-memory resume document edited by the assistant:
// personal details plus seven ordered record lists, with copy-on-write accessors.
package resume

import (
	"fmt"
	"strings"
)

// Section names one of the eight parts of a Document.
type Section string

// Section constants, in display order.
const (
	SectionPersonalDetails  Section = "personalDetails"
	SectionJobs             Section = "jobs"
	SectionEducations       Section = "educations"
	SectionSkills           Section = "skills"
	SectionTools            Section = "tools"
	SectionLanguages        Section = "languages"
	SectionCertificates     Section = "certificates"
	SectionExtracurriculars Section = "extracurriculars"
)

var allSections = []Section{
	SectionPersonalDetails,
	SectionJobs,
	SectionEducations,
	SectionSkills,
	SectionTools,
	SectionLanguages,
	SectionCertificates,
	SectionExtracurriculars,
}

// sectionAliases maps wire spellings produced by older prompts to canonical names.
var sectionAliases = map[string]Section{
	"personal_details": SectionPersonalDetails,
}

// Sections returns every section in display order.
func Sections() []Section {
	out := make([]Section, len(allSections))
	copy(out, allSections)
	return out
}

// ParseSection resolves a section name, accepting the legacy "personal_details" alias.
func ParseSection(name string) (Section, error) {
	name = strings.TrimSpace(name)
	for _, s := range allSections {
		if string(s) == name {
			return s, nil
		}
	}
	if s, ok := sectionAliases[name]; ok {
		return s, nil
	}
	return "", &UnknownSectionError{Name: name}
}

// IsList reports whether the section is an ordered list (every section except personalDetails).
func (s Section) IsList() bool {
	return s != SectionPersonalDetails && s.Valid()
}

// Valid reports whether s is one of the eight canonical sections.
func (s Section) Valid() bool {
	for _, known := range allSections {
		if s == known {
			return true
		}
	}
	return false
}

// Title returns the section name in a human-readable form ("personal details").
func (s Section) Title() string {
	switch s {
	case SectionPersonalDetails:
		return "personal details"
	default:
		return string(s)
	}
}

// UnknownSectionError is returned for a name outside the section vocabulary.
type UnknownSectionError struct {
	Name string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section %q", e.Name)
}
