// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobTarget")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// Extract runs an extraction prompt and decodes the JSON result into out.
func Extract(ctx context.Context, client Client, schema ExtractionSchema, inputText string, tier ModelTier, out any) error {
	raw, err := client.GenerateJSON(ctx, BuildExtractionPrompt(schema, inputText), tier)
	if err != nil {
		return fmt.Errorf("%s extraction failed: %w", schema.Name, err)
	}
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), out); err != nil {
		return fmt.Errorf("%s extraction returned invalid JSON: %w", schema.Name, err)
	}
	return nil
}

// JobTargetSchema returns the extraction schema for the job a resume is tailored to.
// Field names match the resume target fields.
func JobTargetSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobTarget",
		Description: `You are an expert job posting parser. COPY TEXT VERBATIM - do not paraphrase, summarize, or reword.
Your task is to identify the job a candidate is applying for from a raw job posting.
EXCLUDE: Application form fields, EEO statements, legal disclaimers, generic "About Company" boilerplate.`,
		Fields: []SchemaField{
			{
				Name:        "jd_job_title",
				Type:        "\"string\"",
				Description: "The job title exactly as posted",
				Required:    true,
			},
			{
				Name:        "employer",
				Type:        "\"string\"",
				Description: "The hiring company name",
				Required:    true,
			},
			{
				Name:        "jd_post_details",
				Type:        "\"string\"",
				Description: "Responsibilities and requirements, copied verbatim, one per line",
				Required:    true,
			},
		},
	}
}
