package rendering

import (
	_ "embed"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/resume-assistant/internal/resume"
)

//go:embed templates/resume.tex
var defaultTemplate string

// TemplateData is the escaped view of a document passed to the LaTeX template.
type TemplateData struct {
	Name             string
	Title            string
	Contact          string
	Summary          string
	Jobs             []Entry
	Educations       []Entry
	Proficiencies    []Proficiency
	Certificates     []Entry
	Extracurriculars []Entry
}

// Entry is one dated record: a job, school, certificate or activity.
type Entry struct {
	Heading    string
	Subheading string
	Dates      string // e.g. "Jan 2020 -- Present"
	Bullets    []string
}

// Proficiency is one line of the skills block, e.g. "Tools: Docker (Expert), Git".
type Proficiency struct {
	Label string
	Items string
}

// Renderer turns documents into LaTeX source. It is safe for concurrent use.
type Renderer struct {
	name string
	tmpl *template.Template
}

// New returns a renderer using the built-in template.
func New() (*Renderer, error) {
	tmpl, err := parse(builtinTemplate, defaultTemplate)
	if err != nil {
		return nil, err
	}
	return &Renderer{name: builtinTemplate, tmpl: tmpl}, nil
}

// NewFromFile returns a renderer using the template at templatePath.
func NewFromFile(templatePath string) (*Renderer, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return &Renderer{name: templatePath, tmpl: tmpl}, nil
}

// Render produces the LaTeX preview of doc. Sections render in document
// order, so the preview always mirrors list positions.
func (r *Renderer) Render(doc resume.Document) (string, error) {
	var out strings.Builder
	if err := r.tmpl.Execute(&out, BuildTemplateData(doc)); err != nil {
		return "", &RenderError{Template: r.name, DocumentID: doc.ID, Cause: err}
	}
	return out.String(), nil
}

// Render renders doc with the built-in template.
func Render(doc resume.Document) (string, error) {
	r, err := New()
	if err != nil {
		return "", err
	}
	return r.Render(doc)
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &TemplateError{Template: templatePath, Op: "read", Cause: err}
	}
	return parse(templatePath, string(content))
}

func parse(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Option("missingkey=zero").Parse(content)
	if err != nil {
		return nil, &TemplateError{Template: name, Op: "parse", Cause: err}
	}
	return tmpl, nil
}

// BuildTemplateData escapes every field of doc for LaTeX and groups it into
// template sections. Empty sections stay nil so templates can skip them.
func BuildTemplateData(doc resume.Document) *TemplateData {
	pd := doc.PersonalDetails
	data := &TemplateData{
		Name:    EscapeLaTeX(joinNonEmpty(" ", pd.FirstName, pd.LastName)),
		Title:   EscapeLaTeX(pd.ResumeJobTitle),
		Summary: EscapeLaTeX(strings.TrimSpace(pd.Summary)),
		Contact: joinEscaped(` \textbar{} `, pd.Email, pd.Phone, joinNonEmpty(", ", pd.City, pd.Country)),
	}

	for _, j := range doc.Jobs {
		data.Jobs = append(data.Jobs, Entry{
			Heading:    EscapeLaTeX(j.JobTitle),
			Subheading: joinEscaped(", ", j.Employer, j.City),
			Dates:      dateRange(j.StartDate, j.EndDate),
			Bullets:    bullets(j.Description),
		})
	}
	for _, e := range doc.Educations {
		heading := e.Degree
		if e.Degree != "" && e.Field != "" {
			heading = e.Degree + " in " + e.Field
		} else if e.Degree == "" {
			heading = e.Field
		}
		data.Educations = append(data.Educations, Entry{
			Heading:    EscapeLaTeX(heading),
			Subheading: joinEscaped(", ", e.School, e.City),
			Dates:      dateRange(e.StartDate, e.EndDate),
			Bullets:    bullets(e.Description),
		})
	}

	skills := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		skills = append(skills, proficiency(s.Name, s.ProficiencyLevel))
	}
	tools := make([]string, 0, len(doc.Tools))
	for _, t := range doc.Tools {
		tools = append(tools, proficiency(t.Name, t.ProficiencyLevel))
	}
	languages := make([]string, 0, len(doc.Languages))
	for _, l := range doc.Languages {
		languages = append(languages, proficiency(l.Name, l.ProficiencyLevel))
	}
	for _, p := range []Proficiency{
		{Label: "Skills", Items: joinNonEmpty(", ", skills...)},
		{Label: "Tools", Items: joinNonEmpty(", ", tools...)},
		{Label: "Languages", Items: joinNonEmpty(", ", languages...)},
	} {
		if p.Items != "" {
			data.Proficiencies = append(data.Proficiencies, p)
		}
	}

	for _, c := range doc.Certificates {
		sub := c.Issuer
		if c.CredentialID != "" {
			sub = joinNonEmpty(", ", c.Issuer, "ID "+c.CredentialID)
		}
		data.Certificates = append(data.Certificates, Entry{
			Heading:    EscapeLaTeX(c.Name),
			Subheading: EscapeLaTeX(sub),
			Dates:      formatDate(c.IssueDate),
		})
	}
	for _, x := range doc.Extracurriculars {
		data.Extracurriculars = append(data.Extracurriculars, Entry{
			Heading:    EscapeLaTeX(x.ActivityName),
			Subheading: joinEscaped(", ", x.Role, x.Organization),
			Dates:      dateRange(x.StartDate, x.EndDate),
			Bullets:    bullets(x.Description),
		})
	}

	return data
}

// dateRange formats start and end dates; a started entry without an end is current.
func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return formatDate(end)
	case end == "":
		return formatDate(start) + " -- Present"
	default:
		return formatDate(start) + " -- " + formatDate(end)
	}
}

// formatDate renders YYYY-MM-DD as "Jan 2006"; anything else is shown as typed.
func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("Jan 2006")
	}
	return EscapeLaTeX(s)
}

// bullets splits a free-text description into item lines, dropping list markers.
func bullets(description string) []string {
	var out []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line != "" {
			out = append(out, EscapeLaTeX(line))
		}
	}
	return out
}

func proficiency(name, level string) string {
	if name == "" {
		return ""
	}
	if level == "" {
		return EscapeLaTeX(name)
	}
	return EscapeLaTeX(name) + " (" + EscapeLaTeX(level) + ")"
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func joinEscaped(sep string, parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			escaped = append(escaped, EscapeLaTeX(p))
		}
	}
	return strings.Join(escaped, sep)
}
