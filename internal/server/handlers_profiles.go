package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// GenerateRequest is the body of POST /profiles/{id}/resumes. The target
// job is given directly, read from a posting URL, or both; fields given
// directly win over the posting.
type GenerateRequest struct {
	JobTitle    string `json:"jd_job_title" validate:"required_without=JobURL"`
	Employer    string `json:"employer"`
	PostDetails string `json:"jd_post_details"`
	JobURL      string `json:"job_url,omitempty" validate:"omitempty,http_url"`
}

// GenerateResponse is returned by POST /profiles/{id}/resumes.
type GenerateResponse struct {
	ID       string          `json:"id"`
	Document resume.Document `json:"document"`
	Issues   []resume.Issue  `json:"issues"`
	Warnings []string        `json:"warnings,omitempty"`
}

// profileAccount returns the signed-in user for the profile routes.
func (s *Server) profileAccount(r *http.Request) (uuid.UUID, error) {
	if s.profiles == nil {
		return uuid.Nil, ErrProfilesUnavailable
	}
	uid, ok := userID(r)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	return uid, nil
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	list, err := s.profiles.ListProfiles(r.Context(), uid)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"profiles": list})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var p resume.Profile
	if err := s.decodeJSON(w, r, &p); err != nil {
		s.failure(w, r, err)
		return
	}
	p.ID = ""

	id, err := s.profiles.SaveProfile(r.Context(), uid, p)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.log.Info("profile created", "profile", id)
	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	stored, err := s.profiles.GetProfile(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stored)
}

// handleUpdateProfile replaces an existing profile, lists included.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var p resume.Profile
	if err := s.decodeJSON(w, r, &p); err != nil {
		s.failure(w, r, err)
		return
	}
	p.ID = r.PathValue("id")

	ctx := r.Context()
	if _, err := s.profiles.GetProfile(ctx, uid, p.ID); err != nil {
		s.failure(w, r, err)
		return
	}
	if _, err := s.profiles.SaveProfile(ctx, uid, p); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"id": p.ID})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.profiles.DeleteProfile(r.Context(), uid, r.PathValue("id")); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateResume drafts a resume from a profile for a target job and
// stores it with the user's resumes.
func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	uid, err := s.profileAccount(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if s.resumes == nil {
		s.failure(w, r, ErrStorageUnavailable)
		return
	}
	var req GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	ctx := r.Context()
	stored, err := s.profiles.GetProfile(ctx, uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}

	target := resume.Target{JobTitle: req.JobTitle, Employer: req.Employer, PostDetails: req.PostDetails}
	var warnings []string
	if req.JobURL != "" {
		target.JobURL = req.JobURL
		if fetched, err := s.assistant.ResolveTarget(ctx, req.JobURL); err != nil {
			s.log.Warn("failed to resolve job posting", "url", req.JobURL, "error", err)
			warnings = append(warnings, "could not read the job posting: "+err.Error())
		} else {
			target = target.FillFrom(*fetched)
		}
	}
	if strings.TrimSpace(target.JobTitle) == "" {
		s.failure(w, r, &ErrValidation{Field: "jd_job_title", Message: "is required when the job posting cannot be read"})
		return
	}

	doc, err := s.assistant.Generate(ctx, stored.Profile, target)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	id, err := s.resumes.SaveResume(ctx, uid, doc)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	doc.ID = id

	s.log.Info("resume generated", "profile", stored.ID, "resume", id)
	s.jsonResponse(w, http.StatusCreated, GenerateResponse{
		ID:       id,
		Document: doc,
		Issues:   doc.Validate(),
		Warnings: warnings,
	})
}
