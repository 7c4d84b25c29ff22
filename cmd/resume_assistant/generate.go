package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/observability"
	"github.com/jonathan/resume-assistant/internal/resume"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a tailored resume from a candidate profile",
	Long: `Ask the configured language model to draft a resume document for a target
job from a candidate profile JSON file. The target is given with --job-title,
--employer and --details, or read from a job posting with --job-url.`,
	RunE: runGenerate,
}

var (
	generateProfileFile string
	generateJobTitle    string
	generateEmployer    string
	generateDetails     string
	generateJobURL      string
	generateOutputFile  string
)

func init() {
	generateCmd.Flags().StringVarP(&generateProfileFile, "profile", "p", "", "Path to the candidate profile JSON (required)")
	generateCmd.Flags().StringVar(&generateJobTitle, "job-title", "", "Target job title")
	generateCmd.Flags().StringVar(&generateEmployer, "employer", "", "Target employer")
	generateCmd.Flags().StringVar(&generateDetails, "details", "", "Target job responsibilities and requirements")
	generateCmd.Flags().StringVar(&generateJobURL, "job-url", "", "Job posting URL to read the target from")
	generateCmd.Flags().StringVarP(&generateOutputFile, "out", "o", "", "Path to write the drafted document (default: stdout)")
	_ = generateCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generateJobTitle == "" && generateJobURL == "" {
		return errors.New("a target is required: set --job-title or --job-url")
	}
	profile, err := readProfile(generateProfileFile)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	a, client, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	target := resume.Target{JobTitle: generateJobTitle, Employer: generateEmployer, PostDetails: generateDetails}
	if generateJobURL != "" {
		resolved, err := a.ResolveTarget(ctx, generateJobURL)
		if err != nil {
			return fmt.Errorf("failed to read job posting: %w", err)
		}
		target = target.FillFrom(*resolved)
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	printer.PrintTarget(&target)

	doc, err := a.Generate(ctx, profile, target)
	if err != nil {
		return err
	}
	printer.PrintIssues(doc.Validate())
	return writeJSON(cmd.OutOrStdout(), generateOutputFile, doc)
}

func readProfile(path string) (resume.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile resume.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return resume.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return profile, nil
}
