package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by Session.Send when a newer message or an
	// explicit cancel arrived before the reply. The reply's changes are dropped.
	ErrSuperseded = errors.New("reply superseded by a newer turn")
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoPendingChanges is returned by Session.Accept when the latest reply
	// proposed nothing, or its changes were already applied.
	ErrNoPendingChanges = errors.New("no pending changes to accept")
)

// ModelError wraps a failed language model call.
type ModelError struct {
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model error: %s", e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// SaveError wraps a persistence failure after changes were applied in memory.
type SaveError struct {
	Cause error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save resume: %v", e.Cause)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
