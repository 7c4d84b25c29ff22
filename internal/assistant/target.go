package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-assistant/internal/fetch"
	"github.com/jonathan/resume-assistant/internal/llm"
	"github.com/jonathan/resume-assistant/internal/resume"
)

// maxPostingChars bounds the posting text sent for extraction.
const maxPostingChars = 20000

// ResolveTarget downloads a job posting and extracts the job the resume
// should be tailored to. When extraction fails the posting text is still
// returned as the target's details.
func (a *Assistant) ResolveTarget(ctx context.Context, jobURL string) (*resume.Target, error) {
	page, err := fetch.JobPosting(ctx, jobURL, a.fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job posting: %w", err)
	}
	if page.Rendered {
		a.log.Debug("job posting rendered in headless browser", "url", jobURL)
	}
	return a.TargetFromText(ctx, jobURL, page.Text), nil
}

// TargetFromText extracts a target from already-downloaded posting text.
func (a *Assistant) TargetFromText(ctx context.Context, jobURL, text string) *resume.Target {
	text = strings.TrimSpace(text)
	if len(text) > maxPostingChars {
		text = strings.ToValidUTF8(text[:maxPostingChars], "")
	}

	var target resume.Target
	if err := llm.Extract(ctx, a.client, llm.JobTargetSchema(), text, llm.TierLite, &target); err != nil {
		a.log.Warn("job target extraction failed, keeping raw posting", "url", jobURL, "error", err)
		target = resume.Target{PostDetails: text}
	}
	if strings.TrimSpace(target.PostDetails) == "" {
		target.PostDetails = text
	}
	target.JobURL = jobURL
	return &target
}
