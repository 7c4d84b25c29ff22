package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Section
		wantErr bool
	}{
		{name: "canonical scalar", input: "personalDetails", want: SectionPersonalDetails},
		{name: "legacy alias", input: "personal_details", want: SectionPersonalDetails},
		{name: "list section", input: "extracurriculars", want: SectionExtracurriculars},
		{name: "surrounding whitespace", input: " jobs ", want: SectionJobs},
		{name: "unknown", input: "hobbies", wantErr: true},
		{name: "wrong case", input: "Jobs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSection(tt.input)
			if tt.wantErr {
				var unknown *UnknownSectionError
				require.ErrorAs(t, err, &unknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSection_IsList(t *testing.T) {
	assert.False(t, SectionPersonalDetails.IsList())
	for _, s := range Sections()[1:] {
		assert.True(t, s.IsList(), s)
	}
	assert.False(t, Section("hobbies").IsList())
	assert.Len(t, Sections(), 8)
}

func TestGetSection_MissingListIsEmpty(t *testing.T) {
	var doc Document

	value, err := GetSection(doc, SectionSkills)
	require.NoError(t, err)
	skills, ok := value.([]Skill)
	require.True(t, ok)
	assert.NotNil(t, skills)
	assert.Empty(t, skills)

	value, err = GetSection(doc, SectionPersonalDetails)
	require.NoError(t, err)
	assert.Equal(t, PersonalDetails{}, value)
}

func TestGetSection_Unknown(t *testing.T) {
	_, err := GetSection(Empty(), Section("hobbies"))
	assert.Error(t, err)
}

func TestSetSection_DoesNotMutateInput(t *testing.T) {
	doc := Empty()
	doc.Jobs = []Job{{JobTitle: "Dev", Employer: "A"}}

	jobs := []Job{{JobTitle: "Lead", Employer: "B"}}
	next, err := SetSection(doc, SectionJobs, jobs)
	require.NoError(t, err)

	assert.Equal(t, "Dev", doc.Jobs[0].JobTitle)
	assert.Equal(t, "Lead", next.Jobs[0].JobTitle)

	// the stored list is a fresh copy, not the caller's slice
	jobs[0].JobTitle = "changed"
	assert.Equal(t, "Lead", next.Jobs[0].JobTitle)
}

func TestSetSection_WrongType(t *testing.T) {
	doc := Empty()
	_, err := SetSection(doc, SectionJobs, []Skill{{Name: "Go"}})
	assert.Error(t, err)

	_, err = SetSection(doc, SectionPersonalDetails, map[string]string{"fname": "x"})
	assert.Error(t, err)
}

func TestDocument_MarshalEmitsEmptyLists(t *testing.T) {
	data, err := json.Marshal(Document{})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, s := range Sections()[1:] {
		assert.JSONEq(t, `[]`, string(raw[string(s)]), s)
	}
	assert.JSONEq(t, `{"resume_job_title":"","fname":"","lname":"","email":"","phone":"","country":"","city":"","summary":""}`,
		string(raw["personalDetails"]))
	_, hasID := raw["id"]
	assert.False(t, hasID)
}

func TestDocument_UnmarshalNormalizes(t *testing.T) {
	input := `{
		"id": "r1",
		"personal_details": {"fname": "Ada", "summary": null},
		"jobs": null,
		"skills": [{"skill_name": "Go", "proficiency_level": "Expert"}]
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, "r1", doc.ID)
	assert.Equal(t, "Ada", doc.PersonalDetails.FirstName)
	assert.Equal(t, "", doc.PersonalDetails.Summary)
	assert.NotNil(t, doc.Jobs)
	assert.Empty(t, doc.Jobs)
	assert.NotNil(t, doc.Certificates)
	require.Len(t, doc.Skills, 1)
	assert.Equal(t, "Go", doc.Skills[0].Name)
}

func TestDocument_UnmarshalPrefersCanonicalKey(t *testing.T) {
	input := `{"personalDetails": {"fname": "New"}, "personal_details": {"fname": "Old"}}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))
	assert.Equal(t, "New", doc.PersonalDetails.FirstName)
}

func TestDocument_Clone(t *testing.T) {
	id := int64(7)
	doc := Empty()
	doc.Target = &Target{JobTitle: "Backend Engineer"}
	doc.Jobs = []Job{{ID: &id, JobTitle: "Dev"}}

	cp := doc.Clone()
	cp.Jobs[0].JobTitle = "Changed"
	*cp.Jobs[0].ID = 8
	cp.Target.JobTitle = "Other"

	assert.Equal(t, "Dev", doc.Jobs[0].JobTitle)
	assert.Equal(t, int64(7), *doc.Jobs[0].ID)
	assert.Equal(t, "Backend Engineer", doc.Target.JobTitle)
}
