// Package assistant runs the conversation with the language model: it turns a
// chat history and the current resume into a prompt, reads proposed changes
// back out of the reply, and applies accepted changes.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/fetch"
	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/logging"
	"github.com/jonathan/resume-assistant/internal/prompts"
	"github.com/jonathan/resume-assistant/internal/resume"
)

const promptFile = "chat.json"

// Roles accepted in a chat history. System messages are accepted for
// compatibility with stored transcripts but never forwarded to the model.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of a chat history.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Reply is the outcome of one conversational turn. Success is false when the
// model could not be reached; Text then holds the fallback apology.
type Reply struct {
	changes.Parsed
	Success bool `json:"success"`
}

// Options configures an Assistant.
type Options struct {
	// Tier selects the model used for chat turns.
	Tier llm.ModelTier
	// Atomic makes ApplyAndPersist abandon a batch at its first failure.
	Atomic bool
	// Fetch configures job posting downloads for ResolveTarget.
	Fetch  *fetch.Options
	Logger *logging.Logger
}

// Assistant proposes and applies resume changes through a language model.
type Assistant struct {
	client llm.Client
	tier   llm.ModelTier
	atomic bool
	fetch  *fetch.Options
	log    *logging.Logger
}

// New creates an assistant backed by client.
func New(client llm.Client, opts Options) *Assistant {
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Assistant{
		client: client,
		tier:   opts.Tier,
		atomic: opts.Atomic,
		fetch:  opts.Fetch,
		log:    opts.Logger.With("component", "assistant"),
	}
}

// ProposeChanges sends the history to the model with doc as context and
// parses any proposed changes out of the reply. It only returns an error when
// the model call failed; the reply is then the fallback message with no
// changes, so callers can always show it.
func (a *Assistant) ProposeChanges(ctx context.Context, history []Message, doc resume.Document) (*Reply, error) {
	system, err := SystemPrompt(doc)
	if err != nil {
		return fallbackReply(), &ModelError{Message: "failed to build prompt", Cause: err}
	}

	text, err := a.client.Chat(ctx, system, toModelMessages(history), a.tier)
	if err != nil {
		a.log.Error("chat request failed", "model", a.client.GetModel(a.tier), "error", err)
		return fallbackReply(), &ModelError{Message: "chat request failed", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		text = prompts.MustGet(promptFile, "fallback-empty")
	}

	parsed := changes.ParseReply(text)
	for _, w := range parsed.Warnings {
		a.log.Warn("change payload problem", "reason", w)
	}
	a.log.Debug("reply parsed", "changes", len(parsed.Changes), "chars", len(text))
	return &Reply{Parsed: parsed, Success: true}, nil
}

func fallbackReply() *Reply {
	return &Reply{Parsed: changes.ParseReply(prompts.MustGet(promptFile, "fallback-error"))}
}

// SystemPrompt renders the advisor instructions with doc embedded as
// indented JSON and, when the resume has one, its target job.
func SystemPrompt(doc resume.Document) (string, error) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode resume: %w", err)
	}

	target := ""
	if t := doc.Target; t != nil && (t.JobTitle != "" || t.Employer != "" || t.PostDetails != "") {
		target, err = prompts.Render(promptFile, "target-context", map[string]string{
			"JobTitle":    t.JobTitle,
			"Employer":    t.Employer,
			"PostDetails": t.PostDetails,
		})
		if err != nil {
			return "", err
		}
	}

	return prompts.Render(promptFile, "system", map[string]string{
		"TargetContext": target,
		"Document":      string(body),
	})
}

// toModelMessages drops system and unknown roles and empty messages.
func toModelMessages(history []Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case RoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	return out
}
