package server

import (
	"net/http"

	"github.com/google/uuid"
)

// account returns the signed-in user for the stored-resume routes.
func (s *Server) account(r *http.Request) (uuid.UUID, error) {
	if s.resumes == nil {
		return uuid.Nil, ErrStorageUnavailable
	}
	uid, ok := userID(r)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	return uid, nil
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	uid, err := s.account(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	list, err := s.resumes.ListResumes(r.Context(), uid)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": list})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	uid, err := s.account(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	stored, err := s.resumes.GetResume(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stored)
}

// handlePutResume creates or replaces a stored resume. Form issues are
// reported but do not block the save.
func (s *Server) handlePutResume(w http.ResponseWriter, r *http.Request) {
	uid, err := s.account(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	doc, err := decodeDocument(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	doc.ID = r.PathValue("id")

	id, err := s.resumes.SaveResume(r.Context(), uid, doc)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":     id,
		"issues": doc.Validate(),
	})
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	uid, err := s.account(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.resumes.DeleteResume(r.Context(), uid, r.PathValue("id")); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
