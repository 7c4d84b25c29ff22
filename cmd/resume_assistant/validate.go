package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume document",
	Long: `Validate a JSON file against a JSON Schema. Without --schema the file is
checked as a resume document: first against the document schema, then against
the form rules, which are reported as issues.`,
	RunE: runValidate,
}

var (
	validateSchemaFile string
	validateJSONFile   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchemaFile, "schema", "", "Path to a JSON Schema file (default: resume document schema)")
	validateCmd.Flags().StringVar(&validateJSONFile, "json", "", "Path to the JSON file to validate (required)")
	_ = validateCmd.MarkFlagRequired("json")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if validateSchemaFile != "" {
		if err := schemas.ValidateJSON(validateSchemaFile, validateJSONFile); err != nil {
			return validationFailed(out, err)
		}
		_, _ = fmt.Fprintln(out, "Validation passed")
		return nil
	}

	doc, err := readDocument(validateJSONFile)
	if err != nil {
		return validationFailed(out, err)
	}
	issues := doc.Validate()
	for _, issue := range issues {
		_, _ = fmt.Fprintf(out, "Issue: %s: %s\n", issue.Field, issue.Message)
	}
	_, _ = fmt.Fprintf(out, "Validation passed (%d form issue(s))\n", len(issues))
	return nil
}

func validationFailed(w io.Writer, err error) error {
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintln(w, "Validation failed")
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("validation failed with %d error(s)", len(validationErr.Errors))
	}
	return err
}
