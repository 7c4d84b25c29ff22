package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/resume"
)

// CreateSessionRequest is the optional body of POST /sessions. Signed-in
// users may open a stored resume; guests may resume a cached one by key.
type CreateSessionRequest struct {
	ResumeID string           `json:"resume_id,omitempty"`
	GuestKey string           `json:"guest_key,omitempty"`
	JobURL   string           `json:"job_url,omitempty" validate:"omitempty,http_url"`
	Document *resume.Document `json:"document,omitempty" validate:"-"`
}

// CreateSessionResponse is returned by POST /sessions.
type CreateSessionResponse struct {
	Session  assistant.View `json:"session"`
	GuestKey string         `json:"guest_key,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ChangesRequest is the optional body of POST /sessions/{id}/changes. Without
// changes the pending changes of the latest reply are applied.
type ChangesRequest struct {
	Changes []changes.Change `json:"changes"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.failure(w, r, err)
		return
	}
	ctx := r.Context()

	var (
		doc      resume.Document
		loaded   bool
		saver    assistant.Saver
		owner    string
		guestKey string
	)
	uid, authed := userID(r)
	switch {
	case authed:
		owner = uid.String()
		if s.resumes == nil {
			if req.ResumeID != "" {
				s.failure(w, r, ErrStorageUnavailable)
				return
			}
			break
		}
		store := &userStore{store: s.resumes, userID: uid}
		saver = store
		if req.ResumeID != "" {
			stored, err := store.Load(ctx, req.ResumeID)
			if err != nil {
				s.failure(w, r, err)
				return
			}
			doc, loaded = stored, true
		}
	case req.ResumeID != "":
		s.failure(w, r, ErrUnauthorized)
		return
	case s.guests != nil:
		guestKey = req.GuestKey
		if guestKey == "" {
			guestKey = uuid.NewString()
		} else {
			cached, found, err := s.guests.Get(ctx, guestKey)
			if err != nil {
				s.failure(w, r, err)
				return
			}
			doc, loaded = cached, found
		}
		saver = s.guests.Saver(guestKey)
	}

	if !loaded {
		doc = resume.Empty()
		if req.Document != nil {
			doc = *req.Document
		}
	}

	var warnings []string
	if req.JobURL != "" {
		target, err := s.assistant.ResolveTarget(ctx, req.JobURL)
		if err != nil {
			s.log.Warn("failed to resolve job posting", "url", req.JobURL, "error", err)
			warnings = append(warnings, "could not read the job posting: "+err.Error())
		} else {
			doc.Target = target
		}
	}

	session := s.sessions.Create(doc, saver, owner)
	s.log.Info("session created", "session", session.ID, "guest", owner == "", "resume", doc.ID)
	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{
		Session:  session.View(),
		GuestKey: guestKey,
		Warnings: warnings,
	})
}

// session resolves the {id} path value. Sessions owned by a user are hidden
// from everyone else.
func (s *Server) session(r *http.Request) (*assistant.Session, error) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if session.Owner != "" {
		uid, ok := userID(r)
		if !ok || uid.String() != session.Owner {
			return nil, assistant.ErrSessionNotFound
		}
	}
	return session, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.sessions.Delete(session.ID); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req MessageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	reply, err := session.Send(r.Context(), req.Content)
	if err != nil {
		if reply == nil {
			s.failure(w, r, err)
			return
		}
		s.log.Warn("chat turn failed", "session", session.ID, "error", err)
		s.jsonResponse(w, HTTPStatus(err), reply)
		return
	}
	s.jsonResponse(w, http.StatusOK, reply)
}

// handleSendMessageStream is handleSendMessage over Server-Sent Events: an
// "accepted" event as soon as the turn starts, then "reply" and/or "error".
func (s *Server) handleSendMessageStream(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req MessageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	sse.WriteEvent("accepted", map[string]string{"session_id": session.ID}) //nolint:errcheck

	reply, err := session.Send(r.Context(), req.Content)
	if reply != nil {
		sse.WriteEvent("reply", reply) //nolint:errcheck
	}
	if err != nil {
		s.log.Warn("chat turn failed", "session", session.ID, "error", err)
		sse.WriteError(HTTPStatus(err), err.Error())
	}
}

func (s *Server) handleCancelPending(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"cancelled": session.Cancel()})
}

func (s *Server) handleApplySessionChanges(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req ChangesRequest
	if err := s.decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.failure(w, r, err)
		return
	}

	var result *assistant.Result
	if req.Changes == nil {
		result, err = session.Accept(r.Context())
	} else {
		result, err = session.ApplyChanges(r.Context(), req.Changes)
	}
	s.applyResponse(w, r, result, err)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	doc, err := decodeDocument(w, r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	issues, err := session.Replace(r.Context(), doc)
	body := map[string]any{
		"document": session.Document(),
		"issues":   issues,
	}
	if err != nil {
		s.log.Error("edited document was not saved", "session", session.ID, "error", err)
		body["error"] = "document was updated but could not be saved"
		s.jsonResponse(w, HTTPStatus(err), body)
		return
	}
	s.jsonResponse(w, http.StatusOK, body)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	tex, err := s.renderer.Render(session.Document())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-tex; charset=utf-8")
	_, _ = w.Write([]byte(tex))
}
