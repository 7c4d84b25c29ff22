package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/config"
	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/logging"
	"github.com/jonathan/resume-assistant/internal/resume"
	"github.com/jonathan/resume-assistant/internal/schemas"
)

// loadConfig reads --config when given, overlays the environment and fills defaults.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err == nil {
			err = cfg.ApplyEnv()
		}
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if logLevel != "" {
		merged.LogLevel = logLevel
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(cfg.LogLevel)
}

// readDocument loads a resume document file, checking it against the
// document schema first.
func readDocument(path string) (resume.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	if err := schemas.ValidateDocument(data); err != nil {
		return resume.Document{}, fmt.Errorf("%s is not a resume document: %w", path, err)
	}
	var doc resume.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return resume.Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// readCandidates loads changes from a file holding either a JSON change
// payload or a whole assistant reply with a marked payload region.
func readCandidates(path string) ([]changes.Change, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read changes: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		candidates, warnings := changes.DecodeCandidates([]byte(trimmed))
		return candidates, warnings, nil
	}
	parsed := changes.ParseReply(string(data))
	if !parsed.HasChanges() && len(parsed.Warnings) == 0 {
		return nil, nil, errors.New("no changes found in reply")
	}
	return parsed.Changes, parsed.Warnings, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// newAssistant creates the configured language model client and an assistant
// on top of it. The caller closes the client.
func newAssistant(ctx context.Context, cfg *config.Config, log *logging.Logger) (*assistant.Assistant, llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("API key is required (set LLM_API_KEY or the %s provider's key variable)", cfg.LLMProvider)
	}
	llmCfg, err := cfg.LLM()
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", cfg.LLMProvider, err)
	}
	a := assistant.New(client, assistant.Options{Atomic: cfg.AtomicBatches, Fetch: cfg.Fetch(), Logger: log})
	return a, client, nil
}
