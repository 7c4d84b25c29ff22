package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/db"
	"github.com/jonathan/resume-assistant/internal/guest"
	"github.com/jonathan/resume-assistant/internal/schemas"
)

var (
	// ErrUnauthorized is returned when an operation needs a signed-in user.
	ErrUnauthorized = errors.New("authentication required")
	// ErrStorageUnavailable is returned when no database is configured.
	ErrStorageUnavailable = errors.New("resume storage is not configured")
	// ErrProfilesUnavailable is returned when no profile store is configured.
	ErrProfilesUnavailable = errors.New("profile storage is not configured")
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		schemaErr  *schemas.ValidationError
		corrupt    *guest.CorruptEntryError
		applyErr   *changes.ApplyError
		modelErr   *assistant.ModelError
	)
	switch {
	// a model reply that fails the document schema is an upstream failure
	case errors.As(err, &modelErr):
		return http.StatusBadGateway
	case errors.As(err, &validation), errors.As(err, &schemaErr), errors.Is(err, guest.ErrInvalidKey),
		errors.Is(err, errEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, assistant.ErrSessionNotFound), errors.Is(err, db.ErrResumeNotFound),
		errors.Is(err, db.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrSuperseded), errors.Is(err, assistant.ErrNoPendingChanges):
		return http.StatusConflict
	case errors.As(err, &applyErr), errors.As(err, &corrupt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrProfilesUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
