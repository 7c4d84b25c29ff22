package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-assistant/internal/resume"
	"github.com/jonathan/resume-assistant/internal/schemas"
	"github.com/jonathan/resume-assistant/internal/server/middleware"
)

const maxBodyBytes = 2 << 20

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a JSON body into dst and validates its struct tags.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return s.validateStruct(dst)
}

// validateStruct reports the first failing validation tag as an ErrValidation.
func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fieldName(fe.Namespace()), Message: describeTag(fe)}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// fieldName drops the struct name from a validator namespace.
func fieldName(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "required_without":
		return "is required without " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// decodeDocument reads a resume document body, checking it against the
// document JSON Schema before decoding.
func decodeDocument(w http.ResponseWriter, r *http.Request) (resume.Document, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return resume.Document{}, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if len(data) == 0 {
		return resume.Document{}, &ErrValidation{Field: "body", Message: "document is required"}
	}
	if err := schemas.ValidateDocument(data); err != nil {
		return resume.Document{}, err
	}
	var doc resume.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return resume.Document{}, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return doc, nil
}

// userID returns the authenticated user, if any.
func userID(r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	return id, err == nil
}

// userStore binds a ResumeStore to one user so a session can persist to it.
type userStore struct {
	store  ResumeStore
	userID uuid.UUID
}

func (u *userStore) Save(ctx context.Context, doc resume.Document) (string, error) {
	return u.store.SaveResume(ctx, u.userID, doc)
}

func (u *userStore) Load(ctx context.Context, id string) (resume.Document, error) {
	r, err := u.store.GetResume(ctx, u.userID, id)
	if err != nil {
		return resume.Document{}, err
	}
	return r.Document, nil
}
