package changes

import (
	"fmt"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// ValidationError explains why a candidate change was rejected.
type ValidationError struct {
	Section string
	Action  string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s change to %q: %s: %v", e.Action, e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s change to %q: %s", e.Action, e.Section, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ApplyError reports an instruction that could not be applied to the document.
type ApplyError struct {
	Position int
	Section  resume.Section
	Action   Action
	Message  string
	Cause    error
}

func (e *ApplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("change %d (%s %s): %s: %v", e.Position, e.Action, e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("change %d (%s %s): %s", e.Position, e.Action, e.Section, e.Message)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}
