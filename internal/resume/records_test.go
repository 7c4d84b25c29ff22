package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobsDoc(jobs ...Job) Document {
	doc := Empty()
	doc.Jobs = jobs
	return doc
}

func mustEditor(t *testing.T, s Section) ListEditor {
	t.Helper()
	ed, ok := ListEditorFor(s)
	require.True(t, ok, s)
	return ed
}

func TestListEditorFor(t *testing.T) {
	_, ok := ListEditorFor(SectionPersonalDetails)
	assert.False(t, ok)

	for _, s := range Sections()[1:] {
		ed, ok := ListEditorFor(s)
		require.True(t, ok, s)
		assert.Equal(t, s, ed.Section())
	}
}

func TestUpdateAt_ShallowMerge(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "Dev", Employer: "A", City: "Berlin"})
	ed := mustEditor(t, SectionJobs)

	next, err := ed.UpdateAt(doc, 0, json.RawMessage(`{"employer":"B"}`))
	require.NoError(t, err)

	assert.Equal(t, Job{JobTitle: "Dev", Employer: "B", City: "Berlin"}, next.Jobs[0])
	assert.Equal(t, "A", doc.Jobs[0].Employer, "input must not change")
}

func TestUpdateAt_OutOfRange(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "Dev"})
	ed := mustEditor(t, SectionJobs)

	for _, idx := range []int{-1, 1, 5} {
		next, err := ed.UpdateAt(doc, idx, json.RawMessage(`{"employer":"B"}`))
		var idxErr *IndexError
		require.ErrorAs(t, err, &idxErr)
		assert.Equal(t, 1, idxErr.Len)
		assert.Equal(t, doc, next)
	}
}

func TestUpdateAt_TypeMismatch(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "Dev", Employer: "A"})
	ed := mustEditor(t, SectionJobs)

	next, err := ed.UpdateAt(doc, 0, json.RawMessage(`{"employer":5}`))
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, "A", next.Jobs[0].Employer)
}

func TestUpdateAt_RejectsUnknownKeys(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "Dev", Employer: "A"})
	ed := mustEditor(t, SectionJobs)

	tests := []struct {
		name  string
		patch string
		keys  []string
	}{
		{name: "wrong case", patch: `{"JobTitle":"Senior Dev"}`, keys: []string{"JobTitle"}},
		{name: "no such field", patch: `{"title":"Lead"}`, keys: []string{"title"}},
		{name: "mixed with known keys", patch: `{"employer":"B","years":4,"Employer":"C"}`, keys: []string{"Employer", "years"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ed.UpdateAt(doc, 0, json.RawMessage(tt.patch))
			require.Error(t, err)

			var payloadErr *PayloadError
			require.ErrorAs(t, err, &payloadErr)
			var unknown *UnknownFieldsError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tt.keys, unknown.Keys)
			assert.Equal(t, doc, next)
		})
	}
}

func TestUpdateAt_AcceptsIDKey(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "Dev"})
	ed := mustEditor(t, SectionJobs)

	next, err := ed.UpdateAt(doc, 0, json.RawMessage(`{"id":7}`))
	require.NoError(t, err)
	require.NotNil(t, next.Jobs[0].ID)
	assert.Equal(t, int64(7), *next.Jobs[0].ID)
}

func TestAppend_RejectsUnknownKeys(t *testing.T) {
	ed := mustEditor(t, SectionSkills)

	_, err := ed.Append(Empty(), json.RawMessage(`{"Skill_Name":"Go"}`))
	var unknown *UnknownFieldsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"Skill_Name"}, unknown.Keys)
}

func TestAppend(t *testing.T) {
	doc := Empty()
	ed := mustEditor(t, SectionSkills)

	next, err := ed.Append(doc, json.RawMessage(`{"skill_name":"Go"}`))
	require.NoError(t, err)
	assert.Equal(t, []Skill{{Name: "Go"}}, next.Skills)
	assert.Empty(t, doc.Skills)

	_, err = ed.Append(doc, json.RawMessage(`["Go"]`))
	assert.Error(t, err)
}

func TestRemoveAt(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "A"}, Job{JobTitle: "B"}, Job{JobTitle: "C"})
	ed := mustEditor(t, SectionJobs)

	next, err := ed.RemoveAt(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, []Job{{JobTitle: "A"}, {JobTitle: "C"}}, next.Jobs)
	assert.Len(t, doc.Jobs, 3)

	_, err = ed.RemoveAt(doc, 3)
	assert.Error(t, err)
}

func TestRemoveMatching_RemovesAllMatches(t *testing.T) {
	doc := Empty()
	doc.Skills = []Skill{
		{Name: "Go", ProficiencyLevel: "Expert"},
		{Name: "Go", ProficiencyLevel: "Beginner"},
		{Name: "Rust", ProficiencyLevel: "Expert"},
	}
	ed := mustEditor(t, SectionSkills)

	next, removed, err := ed.RemoveMatching(doc, json.RawMessage(`{"skill_name":"Go"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []Skill{{Name: "Rust", ProficiencyLevel: "Expert"}}, next.Skills)
}

func TestRemoveMatching_AllKeysMustMatch(t *testing.T) {
	doc := Empty()
	doc.Skills = []Skill{
		{Name: "Go", ProficiencyLevel: "Expert"},
		{Name: "Go", ProficiencyLevel: "Beginner"},
	}
	ed := mustEditor(t, SectionSkills)

	next, removed, err := ed.RemoveMatching(doc, json.RawMessage(`{"skill_name":"Go","proficiency_level":"Beginner"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []Skill{{Name: "Go", ProficiencyLevel: "Expert"}}, next.Skills)
}

func TestRemoveMatching_NumericID(t *testing.T) {
	one, two := int64(1), int64(2)
	doc := jobsDoc(Job{ID: &one, JobTitle: "A"}, Job{ID: &two, JobTitle: "B"})
	ed := mustEditor(t, SectionJobs)

	next, removed, err := ed.RemoveMatching(doc, json.RawMessage(`{"id":2}`))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	require.Len(t, next.Jobs, 1)
	assert.Equal(t, "A", next.Jobs[0].JobTitle)
}

func TestRemoveMatching_NoMatchOrUnknownKey(t *testing.T) {
	doc := jobsDoc(Job{JobTitle: "A"})
	ed := mustEditor(t, SectionJobs)

	next, removed, err := ed.RemoveMatching(doc, json.RawMessage(`{"jobTitle":"Z"}`))
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, doc, next)

	_, removed, err = ed.RemoveMatching(doc, json.RawMessage(`{"salary":1}`))
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, _, err = ed.RemoveMatching(doc, json.RawMessage(`[1]`))
	assert.Error(t, err)
}

func TestReplace(t *testing.T) {
	doc := Empty()
	doc.Tools = []Tool{{Name: "vim"}}
	ed := mustEditor(t, SectionTools)

	next, err := ed.Replace(doc, json.RawMessage(`[{"tool_name":"Docker"},{"tool_name":"Git"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Tool{{Name: "Docker"}, {Name: "Git"}}, next.Tools)
	assert.Equal(t, []Tool{{Name: "vim"}}, doc.Tools)

	_, err = ed.Replace(doc, json.RawMessage(`{"tool_name":"Docker"}`))
	assert.Error(t, err)
	_, err = ed.Replace(doc, json.RawMessage(`null`))
	assert.Error(t, err)
	_, err = ed.Replace(doc, json.RawMessage(`["Docker"]`))
	assert.Error(t, err)

	_, err = ed.Replace(doc, json.RawMessage(`[{"tool_name":"Docker"},{"name":"Git"}]`))
	var unknown *UnknownFieldsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"name"}, unknown.Keys)
}

func TestMergePersonalDetails(t *testing.T) {
	doc := Empty()
	doc.PersonalDetails = PersonalDetails{FirstName: "Ada", LastName: "Lovelace", City: "London"}

	next, err := MergePersonalDetails(doc, json.RawMessage(`{"summary":"Engineer","city":"Paris"}`))
	require.NoError(t, err)
	assert.Equal(t, PersonalDetails{FirstName: "Ada", LastName: "Lovelace", City: "Paris", Summary: "Engineer"}, next.PersonalDetails)
	assert.Equal(t, "London", doc.PersonalDetails.City)

	_, err = MergePersonalDetails(doc, json.RawMessage(`"text"`))
	assert.Error(t, err)

	_, err = MergePersonalDetails(doc, json.RawMessage(`{"firstName":"Grace"}`))
	var unknown *UnknownFieldsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"firstName"}, unknown.Keys)
}

func TestLen(t *testing.T) {
	doc := jobsDoc(Job{}, Job{})
	assert.Equal(t, 2, Len(doc, SectionJobs))
	assert.Equal(t, 0, Len(doc, SectionPersonalDetails))
}
