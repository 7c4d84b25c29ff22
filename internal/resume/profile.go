package resume

import "encoding/json"

// Profile is a candidate's reusable background. Resumes are drafted from a
// profile for a specific target job.
type Profile struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	ContactNo string `json:"contactno"`
	Country   string `json:"country"`
	City      string `json:"city"`

	Jobs             []Job             `json:"jobs"`
	Educations       []Education       `json:"educations"`
	Certificates     []Certificate     `json:"certificates"`
	Extracurriculars []Extracurricular `json:"extracurriculars"`
	Skills           []Skill           `json:"skills"`
	Tools            []Tool            `json:"tools"`
	Languages        []Language        `json:"languages"`
}

// profileJSON breaks the MarshalJSON recursion.
type profileJSON Profile

// MarshalJSON encodes the profile with every list present.
func (p Profile) MarshalJSON() ([]byte, error) {
	p.normalize()
	return json.Marshal(profileJSON(p))
}

func (p *Profile) normalize() {
	if p.Jobs == nil {
		p.Jobs = []Job{}
	}
	if p.Educations == nil {
		p.Educations = []Education{}
	}
	if p.Certificates == nil {
		p.Certificates = []Certificate{}
	}
	if p.Extracurriculars == nil {
		p.Extracurriculars = []Extracurricular{}
	}
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
	if p.Tools == nil {
		p.Tools = []Tool{}
	}
	if p.Languages == nil {
		p.Languages = []Language{}
	}
}

// ContactDetails returns the personal details a profile fixes on every
// resume drafted from it. Title and summary are left empty.
func (p Profile) ContactDetails() PersonalDetails {
	return PersonalDetails{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.ContactNo,
		Country:   p.Country,
		City:      p.City,
	}
}

// Draft starts a resume from the profile: its contact details and a copy of
// every list, tailored to target.
func (p Profile) Draft(target *Target) Document {
	doc := Document{
		Target:           target,
		PersonalDetails:  p.ContactDetails(),
		Jobs:             cloneList(p.Jobs, func(j Job) Job { j.ID = nil; return j }),
		Educations:       cloneList(p.Educations, func(e Education) Education { e.ID = nil; return e }),
		Skills:           cloneList(p.Skills, nil),
		Tools:            cloneList(p.Tools, nil),
		Languages:        cloneList(p.Languages, nil),
		Certificates:     cloneList(p.Certificates, func(c Certificate) Certificate { c.ID = nil; return c }),
		Extracurriculars: cloneList(p.Extracurriculars, func(e Extracurricular) Extracurricular { e.ID = nil; return e }),
	}
	if target != nil {
		t := *target
		doc.Target = &t
		doc.PersonalDetails.ResumeJobTitle = t.JobTitle
	}
	return doc
}

// FillFrom returns t with its empty fields taken from posting. The job URL
// is kept when t has one.
func (t Target) FillFrom(posting Target) Target {
	if t.JobTitle == "" {
		t.JobTitle = posting.JobTitle
	}
	if t.Employer == "" {
		t.Employer = posting.Employer
	}
	if t.PostDetails == "" {
		t.PostDetails = posting.PostDetails
	}
	if t.JobURL == "" {
		t.JobURL = posting.JobURL
	}
	return t
}
