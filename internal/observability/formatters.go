// Package observability provides formatted output utilities for the CLI's
// human-readable reports.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted report output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens a line to fit inside a box, counting runes.
func truncate(line string) string {
	r := []rune(line)
	if len(r) > boxWidth-4 {
		return string(r[:boxWidth-7]) + "..."
	}
	return line
}

// PrintTarget outputs the job a document is being tailored to.
func (p *Printer) PrintTarget(target *resume.Target) {
	if target == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", orNone(target.JobTitle)))
	sb.WriteString(fmt.Sprintf("Employer: %s\n", orNone(target.Employer)))
	if target.JobURL != "" {
		sb.WriteString(fmt.Sprintf("URL:      %s\n", target.JobURL))
	}

	p.printBox("TARGET JOB", sb.String())
}

// PrintReply outputs the assistant's advice followed by its proposed changes.
func (p *Printer) PrintReply(reply *assistant.Reply) {
	if reply == nil {
		return
	}

	//nolint:errcheck // writing to a terminal
	fmt.Fprintln(p.out, reply.Display)

	if len(reply.Changes) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d proposed:\n\n", len(reply.Changes)))
	for i, c := range reply.Changes {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Label()))
		if c.Explanation != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", c.Explanation))
		}
	}
	for _, w := range reply.Warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}

	p.printBox("PROPOSED CHANGES", sb.String())
}

// PrintResult outputs what an apply did to the document: the summary, then
// anything rejected or skipped, then the document's form issues.
func (p *Printer) PrintResult(result *assistant.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(result.Summary + "\n")
	if result.SavedID != "" {
		sb.WriteString(fmt.Sprintf("Saved as %s\n", result.SavedID))
	}
	writeRejections(&sb, result.Rejections)
	writeWarnings(&sb, result.Warnings)
	p.printBox("APPLIED CHANGES", sb.String())

	p.PrintIssues(result.Issues)
}

// PrintIssues outputs the form issues of a document, or a confirmation when
// there are none.
func (p *Printer) PrintIssues(issues []resume.Issue) {
	if len(issues) == 0 {
		//nolint:errcheck // writing to a terminal
		fmt.Fprintln(p.out, "✅ No form issues")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(issues)))
	count := min(len(issues), maxItemsToShow)
	for _, issue := range issues[:count] {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", issue.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", issue.Message))
	}
	if len(issues) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(issues)-maxItemsToShow))
	}

	p.printBox("FORM ISSUES", sb.String())
}

func writeRejections(sb *strings.Builder, rejections []changes.Rejection) {
	if len(rejections) == 0 {
		return
	}
	sb.WriteString("\nRejected:\n")
	for _, r := range rejections {
		sb.WriteString(fmt.Sprintf("  • #%d %s: %s\n", r.Position+1, r.Change.Label(), r.Reason))
	}
}

func writeWarnings(sb *strings.Builder, warnings []changes.Warning) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\nSkipped:\n")
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("  • %s\n", w))
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
