package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/observability"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask the assistant about a resume document",
	Long: `Send one message about a resume document to the configured language model
and print its advice and proposed changes. With --apply the proposed changes are
applied and the new document is written to --out.`,
	RunE: runChat,
}

var (
	chatDocFile     string
	chatMessage     string
	chatHistoryFile string
	chatJobURL      string
	chatApply       bool
	chatUseBrowser  bool
	chatOutputFile  string
)

func init() {
	chatCmd.Flags().StringVarP(&chatDocFile, "doc", "d", "", "Path to the resume document JSON (required)")
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message to send (required)")
	chatCmd.Flags().StringVar(&chatHistoryFile, "history", "", "Path to a JSON array of earlier {role, content} messages")
	chatCmd.Flags().StringVar(&chatJobURL, "job-url", "", "Job posting URL to tailor the resume to")
	chatCmd.Flags().BoolVar(&chatApply, "apply", false, "Apply the proposed changes")
	chatCmd.Flags().BoolVar(&chatUseBrowser, "use-browser", false, "Render JavaScript job boards in headless Chrome when --job-url text is short (requires Chrome)")
	chatCmd.Flags().StringVarP(&chatOutputFile, "out", "o", "", "Path to write the updated document (default: stdout)")
	_ = chatCmd.MarkFlagRequired("doc")
	_ = chatCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatUseBrowser {
		cfg.UseBrowser = true
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	doc, err := readDocument(chatDocFile)
	if err != nil {
		return err
	}
	history, err := readHistory(chatHistoryFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, client, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if chatJobURL != "" {
		target, err := a.ResolveTarget(ctx, chatJobURL)
		if err != nil {
			return fmt.Errorf("failed to read job posting: %w", err)
		}
		doc.Target = target
		printer.PrintTarget(target)
	}

	history = append(history, assistant.Message{Role: assistant.RoleUser, Content: chatMessage})
	reply, err := a.ProposeChanges(ctx, history, doc)
	if err != nil {
		return err
	}
	printer.PrintReply(reply)

	out := cmd.OutOrStdout()
	if !chatApply {
		return writeJSON(out, "", reply.Changes)
	}
	result, err := a.ApplyAndPersist(ctx, doc, reply.Changes, nil)
	if err != nil {
		return err
	}
	printer.PrintResult(result)
	return writeJSON(out, chatOutputFile, result.Document)
}

func readHistory(path string) ([]assistant.Message, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var history []assistant.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return history, nil
}
