package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/resume"
)

func change(section, action, index, data string) changes.Change {
	c := changes.Change{Section: section, Action: action}
	if index != "" {
		c.Index = json.RawMessage(index)
	}
	if data != "" {
		c.Data = json.RawMessage(data)
	}
	return c
}

func docWithJob() resume.Document {
	doc := resume.Empty()
	doc.Jobs = []resume.Job{{JobTitle: "Dev", Employer: "A"}}
	return doc
}

func TestProposeChanges_ParsesReply(t *testing.T) {
	client := replyWith("Add Go to your skills.\n<RESUME_CHANGES>{\"section\":\"skills\",\"action\":\"add\",\"data\":{\"skill_name\":\"Go\"}}</RESUME_CHANGES>")
	a := New(client, Options{})

	history := []Message{
		{Role: RoleSystem, Content: "ignored"},
		{Role: RoleUser, Content: "What should I add?"},
	}
	reply, err := a.ProposeChanges(context.Background(), history, docWithJob())
	require.NoError(t, err)

	assert.True(t, reply.Success)
	assert.Equal(t, "Add Go to your skills.", reply.Display)
	require.Len(t, reply.Changes, 1)
	assert.Equal(t, "skills", reply.Changes[0].Section)

	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "What should I add?"}}, client.lastMessages())
	require.Len(t, client.systems, 1)
	assert.Contains(t, client.systems[0], "Current Resume Data:")
	assert.Contains(t, client.systems[0], `"employer": "A"`)
	assert.Contains(t, client.systems[0], "<RESUME_CHANGES>")
	assert.NotContains(t, client.systems[0], "{{.")
}

func TestProposeChanges_NoPayload(t *testing.T) {
	a := New(replyWith("Looks good to me."), Options{})
	reply, err := a.ProposeChanges(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, resume.Empty())
	require.NoError(t, err)
	assert.False(t, reply.HasChanges())
	assert.Equal(t, "Looks good to me.", reply.Text)
}

func TestProposeChanges_MalformedPayload(t *testing.T) {
	text := "Here is some advice.\n<RESUME_CHANGES>not json</RESUME_CHANGES>"
	a := New(replyWith(text), Options{})
	reply, err := a.ProposeChanges(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, resume.Empty())
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, text, reply.Text)
	assert.Empty(t, reply.Changes)
	assert.NotEmpty(t, reply.Warnings)
}

func TestProposeChanges_EmptyOutput(t *testing.T) {
	a := New(replyWith("  \n"), Options{})
	reply, err := a.ProposeChanges(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, resume.Empty())
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, "Sorry, I could not generate a response.", reply.Text)
}

func TestProposeChanges_ModelFailure(t *testing.T) {
	boom := errors.New("connection reset")
	client := &fakeClient{chat: func(context.Context, string, []llm.Message) (string, error) { return "", boom }}
	a := New(client, Options{})

	reply, err := a.ProposeChanges(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, resume.Empty())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var modelErr *ModelError
	assert.ErrorAs(t, err, &modelErr)

	require.NotNil(t, reply)
	assert.False(t, reply.Success)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.", reply.Display)
	assert.Empty(t, reply.Changes)
}

func TestSystemPrompt_Target(t *testing.T) {
	doc := resume.Empty()
	plain, err := SystemPrompt(doc)
	require.NoError(t, err)
	assert.NotContains(t, plain, "tailoring this resume")

	doc.Target = &resume.Target{JobTitle: "SRE", Employer: "Globex", PostDetails: "Run Kubernetes"}
	targeted, err := SystemPrompt(doc)
	require.NoError(t, err)
	assert.Contains(t, targeted, "Job title: SRE")
	assert.Contains(t, targeted, "Employer: Globex")
	assert.Contains(t, targeted, "Run Kubernetes")
}

func TestToModelMessages(t *testing.T) {
	got := toModelMessages([]Message{
		{Role: RoleSystem, Content: "be nice"},
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: "tool", Content: "x"},
		{Role: RoleUser, Content: "   "},
		{Role: RoleUser, Content: "three"},
	})
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "one"},
		{Role: llm.RoleAssistant, Content: "two"},
		{Role: llm.RoleUser, Content: "three"},
	}, got)
}

func TestApplyAndPersist(t *testing.T) {
	a := New(replyWith(""), Options{})
	saver := &memorySaver{id: "guest-key"}
	candidates := []changes.Change{
		change("skills", "add", "", `{"skill_name":"Go"}`),
		change("personalDetails", "remove", "", `{"fname":"x"}`),
		change("jobs", "update", "5", `{"employer":"B"}`),
	}

	result, err := a.ApplyAndPersist(context.Background(), docWithJob(), candidates, saver)
	require.NoError(t, err)

	assert.Equal(t, []resume.Skill{{Name: "Go"}}, result.Document.Skills)
	assert.Equal(t, "A", result.Document.Jobs[0].Employer)
	assert.Len(t, result.Applied, 1)
	require.Len(t, result.Rejections, 1)
	assert.Equal(t, 1, result.Rejections[0].Position)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 1, result.Warnings[0].Position)
	assert.True(t, strings.HasPrefix(result.Summary, "Applied 1 change(s):"))

	require.Len(t, saver.saved, 1)
	assert.Equal(t, result.Document.Skills, saver.saved[0].Skills)
	assert.Equal(t, "guest-key", result.SavedID)
	assert.Empty(t, result.Document.ID)
}

func TestApplyAndPersist_StoreAssignsID(t *testing.T) {
	a := New(replyWith(""), Options{})
	store := &memoryStore{memorySaver{id: "resume-1"}}

	result, err := a.ApplyAndPersist(context.Background(), docWithJob(),
		[]changes.Change{change("jobs", "update", "0", `{"employer":"B"}`)}, store)
	require.NoError(t, err)
	assert.Equal(t, "resume-1", result.Document.ID)
	assert.Equal(t, "B", result.Document.Jobs[0].Employer)
}

func TestApplyAndPersist_NothingApplied(t *testing.T) {
	a := New(replyWith(""), Options{})
	saver := &memorySaver{}
	doc := docWithJob()

	result, err := a.ApplyAndPersist(context.Background(), doc, nil, saver)
	require.NoError(t, err)
	assert.Equal(t, doc, result.Document)
	assert.Equal(t, "No changes to apply.", result.Summary)
	assert.Empty(t, saver.saved)
}

func TestApplyAndPersist_SaveFailure(t *testing.T) {
	a := New(replyWith(""), Options{})
	saver := &memorySaver{err: errors.New("disk full")}

	result, err := a.ApplyAndPersist(context.Background(), docWithJob(),
		[]changes.Change{change("jobs", "update", "0", `{"employer":"B"}`)}, saver)
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	require.NotNil(t, result)
	assert.Equal(t, "B", result.Document.Jobs[0].Employer)
}

func TestApplyAndPersist_Atomic(t *testing.T) {
	a := New(replyWith(""), Options{Atomic: true})
	saver := &memorySaver{}
	doc := docWithJob()

	result, err := a.ApplyAndPersist(context.Background(), doc, []changes.Change{
		change("skills", "add", "", `{"skill_name":"Go"}`),
		change("jobs", "remove", "3", ""),
	}, saver)
	var applyErr *changes.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, doc, result.Document)
	assert.Empty(t, result.Applied)
	assert.Empty(t, saver.saved)
}

func TestApplyAndPersist_ReportsIssues(t *testing.T) {
	a := New(replyWith(""), Options{})
	result, err := a.ApplyAndPersist(context.Background(), resume.Empty(),
		[]changes.Change{change("personalDetails", "update", "", `{"email":"not-an-email"}`)}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "personalDetails.email", result.Issues[0].Field)
	assert.Equal(t, "not-an-email", result.Document.PersonalDetails.Email)
}

func TestTargetFromText(t *testing.T) {
	client := replyWith("")
	client.json = func(prompt string) (string, error) {
		assert.Contains(t, prompt, "Senior Go Engineer at Acme")
		return "```json\n{\"jd_job_title\":\"Senior Go Engineer\",\"employer\":\"Acme\",\"jd_post_details\":\"Build APIs\"}\n```", nil
	}
	a := New(client, Options{})

	target := a.TargetFromText(context.Background(), "https://example.com/job", "Senior Go Engineer at Acme. Build APIs.")
	assert.Equal(t, &resume.Target{
		JobTitle:    "Senior Go Engineer",
		Employer:    "Acme",
		PostDetails: "Build APIs",
		JobURL:      "https://example.com/job",
	}, target)
}

func TestTargetFromText_ExtractionFails(t *testing.T) {
	a := New(replyWith(""), Options{})
	target := a.TargetFromText(context.Background(), "https://example.com/job", "  Raw posting text ")
	assert.Equal(t, "Raw posting text", target.PostDetails)
	assert.Empty(t, target.JobTitle)
	assert.Equal(t, "https://example.com/job", target.JobURL)
}

func TestResolveTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main><h1>Data Engineer</h1><p>Own our pipelines.</p></main></body></html>`))
	}))
	defer server.Close()

	client := replyWith("")
	client.json = func(string) (string, error) {
		return `{"jd_job_title":"Data Engineer","employer":"Initech","jd_post_details":"Own our pipelines."}`, nil
	}
	a := New(client, Options{})

	target, err := a.ResolveTarget(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", target.JobTitle)
	assert.Equal(t, server.URL, target.JobURL)

	_, err = a.ResolveTarget(context.Background(), "not a url")
	assert.Error(t, err)
}
