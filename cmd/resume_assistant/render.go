package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/rendering"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a LaTeX preview of a resume document",
	RunE:  runRender,
}

var (
	renderDocFile      string
	renderTemplateFile string
	renderOutputFile   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderDocFile, "doc", "d", "", "Path to the resume document JSON (required)")
	renderCmd.Flags().StringVarP(&renderTemplateFile, "template", "t", "", "Path to a LaTeX template (default: built-in)")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output .tex file (default: stdout)")
	_ = renderCmd.MarkFlagRequired("doc")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(renderDocFile)
	if err != nil {
		return err
	}

	renderer, err := rendering.New()
	if renderTemplateFile != "" {
		renderer, err = rendering.NewFromFile(renderTemplateFile)
	}
	if err != nil {
		return err
	}

	tex, err := renderer.Render(doc)
	if err != nil {
		return err
	}
	if renderOutputFile == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), tex)
		return err
	}
	if err := os.WriteFile(renderOutputFile, []byte(tex), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Output: %s\n", renderOutputFile)
	return nil
}
