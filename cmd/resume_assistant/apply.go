package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/observability"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply changes to a resume document",
	Long: `Apply a change payload, or the changes in an assistant reply, to a resume
document. Invalid changes are rejected and changes that do not fit the document
are skipped; both are reported on stderr.`,
	RunE: runApply,
}

var (
	applyDocFile     string
	applyChangesFile string
	applyOutputFile  string
	applyAtomic      bool
)

func init() {
	applyCmd.Flags().StringVarP(&applyDocFile, "doc", "d", "", "Path to the resume document JSON (required)")
	applyCmd.Flags().StringVarP(&applyChangesFile, "changes", "c", "", "Path to a change payload or reply text (required)")
	applyCmd.Flags().StringVarP(&applyOutputFile, "out", "o", "", "Path to output document (default: stdout)")
	applyCmd.Flags().BoolVar(&applyAtomic, "atomic", false, "Leave the document unchanged if any change fails")
	_ = applyCmd.MarkFlagRequired("doc")
	_ = applyCmd.MarkFlagRequired("changes")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(applyDocFile)
	if err != nil {
		return err
	}
	candidates, warnings, err := readCandidates(applyChangesFile)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, w := range warnings {
		_, _ = fmt.Fprintf(stderr, "Warning: %s\n", w)
	}

	batch, rejections := changes.Validate(candidates)
	for _, r := range rejections {
		_, _ = fmt.Fprintf(stderr, "Rejected change %d: %s\n", r.Position+1, r.Reason)
	}

	next, skipped, err := changes.ApplyWithOptions(doc, batch, changes.ApplyOptions{Atomic: applyAtomic})
	for _, w := range skipped {
		_, _ = fmt.Fprintf(stderr, "Skipped: %s\n", w)
	}
	if err != nil {
		return err
	}

	if len(skipped) < len(batch) {
		_, _ = fmt.Fprintln(stderr, changes.Summarize(changes.Succeeded(batch, skipped)))
	}
	observability.NewPrinter(stderr).PrintIssues(next.Validate())
	return writeJSON(cmd.OutOrStdout(), applyOutputFile, next)
}
