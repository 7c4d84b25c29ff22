package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("chat.json", "system")
	require.NoError(t, err)
	assert.Contains(t, prompt, "expert resume advisor")
	assert.Contains(t, prompt, "<RESUME_CHANGES>")
	assert.Contains(t, prompt, "{{.Document}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("chat.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.Equal(t, "Sorry, I could not generate a response.", MustGet("chat.json", "fallback-empty"))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "all placeholders",
			template: "Hello {{.Name}}, welcome to {{.Company}}!",
			data:     map[string]string{"Name": "Alice", "Company": "Acme Corp"},
			expected: "Hello Alice, welcome to Acme Corp!",
		},
		{
			name:     "no placeholders",
			template: "No placeholders here",
			data:     map[string]string{"Key": "Value"},
			expected: "No placeholders here",
		},
		{
			name:     "missing data keeps placeholder",
			template: "Hello {{.Name}}",
			data:     map[string]string{},
			expected: "Hello {{.Name}}",
		},
		{
			name:     "values are not re-expanded",
			template: "{{.A}} and {{.B}}",
			data:     map[string]string{"A": "{{.B}}", "B": "b"},
			expected: "{{.B}} and b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render("chat.json", "target-context", map[string]string{
		"JobTitle":    "Platform Engineer",
		"Employer":    "Acme",
		"PostDetails": "Run Kubernetes",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Job title: Platform Engineer")
	assert.NotContains(t, out, "{{.")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("chat.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback-empty", "fallback-error", "system", "target-context"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("chat.json", "system")
	require.NoError(t, err)
	prompt2, err := Get("chat.json", "system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestGet_DraftPrompt(t *testing.T) {
	ClearCache()

	keys, err := List("generate.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"resume-draft"}, keys)

	prompt, err := Get("generate.json", "resume-draft")
	require.NoError(t, err)
	for _, placeholder := range []string{"{{.JobTitle}}", "{{.Employer}}", "{{.PostDetails}}", "{{.Profile}}"} {
		assert.Contains(t, prompt, placeholder)
	}
}
