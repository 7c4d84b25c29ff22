package resume

import (
	"encoding/json"
)

// Document is the resume being edited: a scalar personal-details record plus
// seven ordered lists. List position is the editing address; the optional
// numeric IDs on records are persistence identity only.
type Document struct {
	ID              string          `json:"id,omitempty"`
	Target          *Target         `json:"target,omitempty"`
	PersonalDetails PersonalDetails `json:"personalDetails"`

	Jobs             []Job             `json:"jobs" validate:"dive"`
	Educations       []Education       `json:"educations" validate:"dive"`
	Skills           []Skill           `json:"skills"`
	Tools            []Tool            `json:"tools"`
	Languages        []Language        `json:"languages"`
	Certificates     []Certificate     `json:"certificates" validate:"dive"`
	Extracurriculars []Extracurricular `json:"extracurriculars" validate:"dive"`
}

// Target is the job posting a resume is tailored to. It is context for the
// assistant and cannot be addressed by a change instruction.
type Target struct {
	JobTitle    string `json:"jd_job_title"`
	Employer    string `json:"employer"`
	PostDetails string `json:"jd_post_details"`
	JobURL      string `json:"job_url,omitempty"`
}

// PersonalDetails holds name, contact fields and the free-text summary.
// Every field is always present; absent values are empty strings.
type PersonalDetails struct {
	ResumeJobTitle string `json:"resume_job_title" validate:"omitempty,min=3"`
	FirstName      string `json:"fname" validate:"omitempty,min=3"`
	LastName       string `json:"lname" validate:"omitempty,min=1"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Country        string `json:"country"`
	City           string `json:"city"`
	Summary        string `json:"summary" validate:"omitempty,min=3"`
}

// Job is one work-history entry.
type Job struct {
	ID          *int64 `json:"id,omitempty"`
	JobTitle    string `json:"jobTitle" validate:"min=3"`
	Employer    string `json:"employer" validate:"min=3"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	City        string `json:"city" validate:"min=1"`
}

// Education is one school entry.
type Education struct {
	ID          *int64 `json:"id,omitempty"`
	School      string `json:"school" validate:"min=3"`
	Degree      string `json:"degree" validate:"min=3"`
	Field       string `json:"field" validate:"min=3"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	City        string `json:"city" validate:"min=1"`
}

// Skill is a named skill with a proficiency level.
type Skill struct {
	Name             string `json:"skill_name"`
	ProficiencyLevel string `json:"proficiency_level"`
}

// Tool is a named tool with a proficiency level.
type Tool struct {
	Name             string `json:"tool_name"`
	ProficiencyLevel string `json:"proficiency_level"`
}

// Language is a spoken language with a proficiency level.
type Language struct {
	Name             string `json:"lang_name"`
	ProficiencyLevel string `json:"proficiency_level"`
}

// Certificate is a professional certification.
type Certificate struct {
	ID             *int64 `json:"id,omitempty"`
	Name           string `json:"name" validate:"required"`
	Issuer         string `json:"issuer" validate:"required"`
	IssueDate      string `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate string `json:"expirationDate"`
	CredentialID   string `json:"credentialId"`
	CredentialURL  string `json:"credentialUrl" validate:"omitempty,url"`
	Description    string `json:"description"`
}

// Extracurricular is a volunteer or club activity.
type Extracurricular struct {
	ID           *int64 `json:"id,omitempty"`
	ActivityName string `json:"activityName" validate:"required"`
	Organization string `json:"organization" validate:"required"`
	Role         string `json:"role"`
	StartDate    string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description"`
}

// Empty returns the blank template a guest session starts from.
func Empty() Document {
	var d Document
	d.normalize()
	return d
}

// normalize replaces nil lists with empty ones so encoders never emit null.
func (d *Document) normalize() {
	if d.Jobs == nil {
		d.Jobs = []Job{}
	}
	if d.Educations == nil {
		d.Educations = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Tools == nil {
		d.Tools = []Tool{}
	}
	if d.Languages == nil {
		d.Languages = []Language{}
	}
	if d.Certificates == nil {
		d.Certificates = []Certificate{}
	}
	if d.Extracurriculars == nil {
		d.Extracurriculars = []Extracurricular{}
	}
}

// documentJSON breaks the MarshalJSON/UnmarshalJSON recursion.
type documentJSON Document

// MarshalJSON encodes the document with every list present.
func (d Document) MarshalJSON() ([]byte, error) {
	d.normalize()
	return json.Marshal(documentJSON(d))
}

// UnmarshalJSON decodes a document, accepting the legacy "personal_details"
// key and treating missing or null sections as empty.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var legacy struct {
		PersonalDetails *PersonalDetails `json:"personal_details"`
		Current         json.RawMessage  `json:"personalDetails"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	if legacy.Current == nil && legacy.PersonalDetails != nil {
		raw.PersonalDetails = *legacy.PersonalDetails
	}

	*d = Document(raw)
	d.normalize()
	return nil
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := d
	if d.Target != nil {
		t := *d.Target
		out.Target = &t
	}
	out.Jobs = cloneList(d.Jobs, func(j Job) Job { j.ID = cloneID(j.ID); return j })
	out.Educations = cloneList(d.Educations, func(e Education) Education { e.ID = cloneID(e.ID); return e })
	out.Skills = cloneList(d.Skills, nil)
	out.Tools = cloneList(d.Tools, nil)
	out.Languages = cloneList(d.Languages, nil)
	out.Certificates = cloneList(d.Certificates, func(c Certificate) Certificate { c.ID = cloneID(c.ID); return c })
	out.Extracurriculars = cloneList(d.Extracurriculars, func(e Extracurricular) Extracurricular { e.ID = cloneID(e.ID); return e })
	return out
}

func cloneList[T any](in []T, fix func(T) T) []T {
	out := make([]T, len(in))
	copy(out, in)
	if fix != nil {
		for i := range out {
			out[i] = fix(out[i])
		}
	}
	return out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
