package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/prompts"
	"github.com/jonathan/resume-assistant/internal/resume"
	"github.com/jonathan/resume-assistant/internal/schemas"
)

const generatePromptFile = "generate.json"

// Generate drafts a resume for target from a candidate profile. The model
// writes the title, summary and lists; contact details always come from the
// profile, and any list the model leaves empty is copied from the profile.
func (a *Assistant) Generate(ctx context.Context, profile resume.Profile, target resume.Target) (resume.Document, error) {
	prompt, err := DraftPrompt(profile, target)
	if err != nil {
		return resume.Document{}, &ModelError{Message: "failed to build prompt", Cause: err}
	}

	raw, err := a.client.GenerateJSON(ctx, prompt, a.tier)
	if err != nil {
		a.log.Error("resume generation failed", "model", a.client.GetModel(a.tier), "error", err)
		return resume.Document{}, &ModelError{Message: "resume generation failed", Cause: err}
	}

	data := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.ValidateDocument(data); err != nil {
		a.log.Warn("generated resume rejected", "error", err)
		return resume.Document{}, &ModelError{Message: "generated resume does not match the document schema", Cause: err}
	}
	var generated resume.Document
	if err := json.Unmarshal(data, &generated); err != nil {
		return resume.Document{}, &ModelError{Message: "generated resume is not a document", Cause: err}
	}

	doc := profile.Draft(&target)
	if title := strings.TrimSpace(generated.PersonalDetails.ResumeJobTitle); title != "" {
		doc.PersonalDetails.ResumeJobTitle = title
	}
	doc.PersonalDetails.Summary = strings.TrimSpace(generated.PersonalDetails.Summary)
	doc.Jobs = orProfile(generated.Jobs, doc.Jobs)
	doc.Educations = orProfile(generated.Educations, doc.Educations)
	doc.Skills = orProfile(generated.Skills, doc.Skills)
	doc.Tools = orProfile(generated.Tools, doc.Tools)
	doc.Languages = orProfile(generated.Languages, doc.Languages)
	doc.Certificates = orProfile(generated.Certificates, doc.Certificates)
	doc.Extracurriculars = orProfile(generated.Extracurriculars, doc.Extracurriculars)

	a.log.Info("resume drafted",
		"job_title", doc.PersonalDetails.ResumeJobTitle,
		"jobs", len(doc.Jobs),
		"skills", len(doc.Skills),
	)
	return doc, nil
}

// DraftPrompt renders the generation instructions with the target job and
// the profile as indented JSON.
func DraftPrompt(profile resume.Profile, target resume.Target) (string, error) {
	// storage identity stays out of the prompt
	profile.ID = ""
	body, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	return prompts.Render(generatePromptFile, "resume-draft", map[string]string{
		"JobTitle":    target.JobTitle,
		"Employer":    target.Employer,
		"PostDetails": target.PostDetails,
		"Profile":     string(body),
	})
}

func orProfile[T any](generated, fromProfile []T) []T {
	if len(generated) > 0 {
		return generated
	}
	return fromProfile
}
