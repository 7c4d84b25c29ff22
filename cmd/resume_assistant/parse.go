package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/changes"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract proposed changes from an assistant reply",
	Long: `Read an assistant reply, extract the changes in its marked payload region and
report which of them are structurally valid. Prints JSON.`,
	RunE: runParse,
}

var (
	parseInputFile  string
	parseOutputFile string
)

func init() {
	parseCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to the reply text file (required)")
	parseCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	_ = parseCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseCmd)
}

// ParseOutput is what the parse command prints.
type ParseOutput struct {
	changes.Parsed
	Valid      changes.Batch       `json:"valid"`
	Rejections []changes.Rejection `json:"rejections,omitempty"`
}

func runParse(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(parseInputFile)
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	parsed := changes.ParseReply(string(data))
	batch, rejections := changes.Validate(parsed.Changes)
	for _, w := range parsed.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}

	return writeJSON(cmd.OutOrStdout(), parseOutputFile, ParseOutput{
		Parsed:     parsed,
		Valid:      batch,
		Rejections: rejections,
	})
}
