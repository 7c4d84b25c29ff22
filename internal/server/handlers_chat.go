package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/resume"
)

// ProposeRequest is the body of POST /chat/propose.
type ProposeRequest struct {
	Messages []assistant.Message `json:"messages" validate:"required,min=1,dive"`
	Document resume.Document     `json:"document" validate:"-"`
}

// ApplyRequest is the body of POST /chat/apply.
type ApplyRequest struct {
	Document resume.Document  `json:"document" validate:"-"`
	Changes  []changes.Change `json:"changes"`
}

// handlePropose runs one stateless chat turn. The caller owns the history
// and the document.
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req ProposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	reply, err := s.assistant.ProposeChanges(r.Context(), req.Messages, req.Document)
	if err != nil {
		s.log.Warn("chat turn failed", "error", err)
		s.jsonResponse(w, HTTPStatus(err), reply)
		return
	}
	s.jsonResponse(w, http.StatusOK, reply)
}

// handleApply applies candidate changes to the posted document without
// storing it.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	result, err := s.assistant.ApplyAndPersist(r.Context(), req.Document, req.Changes, nil)
	s.applyResponse(w, r, result, err)
}

// applyResponse writes an apply result. Errors still carry the result so the
// client sees what was applied before the failure.
func (s *Server) applyResponse(w http.ResponseWriter, r *http.Request, result *assistant.Result, err error) {
	if err == nil {
		s.jsonResponse(w, http.StatusOK, result)
		return
	}
	if result == nil {
		s.failure(w, r, err)
		return
	}

	message := err.Error()
	var saveErr *assistant.SaveError
	if errors.As(err, &saveErr) {
		s.log.Error("applied changes were not saved", "path", r.URL.Path, "error", err)
		message = "changes were applied but could not be saved"
	}
	s.jsonResponse(w, HTTPStatus(err), map[string]any{
		"error":  message,
		"result": result,
	})
}
