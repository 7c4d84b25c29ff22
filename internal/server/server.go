// Package server provides the HTTP API for the resume assistant.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-assistant/internal/assistant"
	"github.com/jonathan/resume-assistant/internal/config"
	"github.com/jonathan/resume-assistant/internal/db"
	"github.com/jonathan/resume-assistant/internal/guest"
	"github.com/jonathan/resume-assistant/internal/logging"
	"github.com/jonathan/resume-assistant/internal/rendering"
	"github.com/jonathan/resume-assistant/internal/resume"
	"github.com/jonathan/resume-assistant/internal/server/middleware"
	"github.com/jonathan/resume-assistant/internal/server/ratelimit"
)

const (
	shutdownTimeout = 30 * time.Second
	expireInterval  = time.Minute

	defaultSessionTTL = 2 * time.Hour
)

// ResumeStore is the account storage used by the server; *db.DB implements it.
type ResumeStore interface {
	SaveResume(ctx context.Context, userID uuid.UUID, doc resume.Document) (string, error)
	GetResume(ctx context.Context, userID uuid.UUID, id string) (*db.Resume, error)
	ListResumes(ctx context.Context, userID uuid.UUID) ([]db.ResumeSummary, error)
	DeleteResume(ctx context.Context, userID uuid.UUID, id string) error
	Ping(ctx context.Context) error
}

// ProfileStore is the candidate profile storage used by the server; *db.DB
// implements it.
type ProfileStore interface {
	SaveProfile(ctx context.Context, userID uuid.UUID, p resume.Profile) (string, error)
	GetProfile(ctx context.Context, userID uuid.UUID, id string) (*db.Profile, error)
	ListProfiles(ctx context.Context, userID uuid.UUID) ([]db.Profile, error)
	DeleteProfile(ctx context.Context, userID uuid.UUID, id string) error
}

// Deps are the collaborators of a Server. Assistant is required; the rest
// are optional and disable the features that need them when nil.
type Deps struct {
	Config    *config.Config
	Assistant *assistant.Assistant
	Resumes   ResumeStore
	Profiles  ProfileStore
	Guests    *guest.Cache
	Renderer  *rendering.Renderer
	JWT       *JWTService
	Limiter   *ratelimit.Limiter
	Logger    *logging.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	assistant *assistant.Assistant
	sessions  *assistant.Sessions
	resumes   ResumeStore
	profiles  ProfileStore
	guests    *guest.Cache
	renderer  *rendering.Renderer
	limiter   *ratelimit.Limiter
	validate  *validator.Validate
	log       *logging.Logger

	allowedOrigins []string
	sessionTTL     time.Duration
}

// New creates a server and its routes.
func New(deps Deps) (*Server, error) {
	if deps.Assistant == nil {
		return nil, fmt.Errorf("server requires an assistant")
	}
	cfg := config.Defaults()
	if deps.Config != nil {
		cfg = deps.Config.MergeWithDefaults(cfg)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Renderer == nil {
		r, err := rendering.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load preview template: %w", err)
		}
		deps.Renderer = r
	}

	s := &Server{
		assistant:      deps.Assistant,
		sessions:       assistant.NewSessions(deps.Assistant),
		resumes:        deps.Resumes,
		profiles:       deps.Profiles,
		guests:         deps.Guests,
		renderer:       deps.Renderer,
		limiter:        deps.Limiter,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            deps.Logger.With("component", "server"),
		allowedOrigins: cfg.AllowedOrigins,
		sessionTTL:     cfg.SessionTimeout(),
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = defaultSessionTTL
	}

	// Without a JWT service every request is a guest and account routes refuse.
	optionalAuth := func(h http.Handler) http.Handler { return h }
	requireAuth := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			s.errorResponse(w, http.StatusUnauthorized, "authentication is not configured")
		})
	}
	if deps.JWT != nil {
		optionalAuth = middleware.OptionalAuth(deps.JWT.AsTokenValidator())
		requireAuth = middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
	}
	guestOrUser := func(h http.HandlerFunc) http.Handler { return optionalAuth(h) }
	userOnly := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless chat endpoints
	mux.HandleFunc("POST /chat/propose", s.handlePropose)
	mux.HandleFunc("POST /chat/apply", s.handleApply)

	// Editing sessions
	mux.Handle("POST /sessions", guestOrUser(s.handleCreateSession))
	mux.Handle("GET /sessions/{id}", guestOrUser(s.handleGetSession))
	mux.Handle("DELETE /sessions/{id}", guestOrUser(s.handleDeleteSession))
	mux.Handle("POST /sessions/{id}/messages", guestOrUser(s.handleSendMessage))
	mux.Handle("POST /sessions/{id}/messages/stream", guestOrUser(s.handleSendMessageStream))
	mux.Handle("DELETE /sessions/{id}/messages/pending", guestOrUser(s.handleCancelPending))
	mux.Handle("POST /sessions/{id}/changes", guestOrUser(s.handleApplySessionChanges))
	mux.Handle("PUT /sessions/{id}/document", guestOrUser(s.handleReplaceDocument))
	mux.Handle("GET /sessions/{id}/preview.tex", guestOrUser(s.handlePreview))

	// Stored resumes
	mux.Handle("GET /resumes", userOnly(s.handleListResumes))
	mux.Handle("GET /resumes/{id}", userOnly(s.handleGetResume))
	mux.Handle("PUT /resumes/{id}", userOnly(s.handlePutResume))
	mux.Handle("DELETE /resumes/{id}", userOnly(s.handleDeleteResume))

	// Candidate profiles
	mux.Handle("GET /profiles", userOnly(s.handleListProfiles))
	mux.Handle("POST /profiles", userOnly(s.handleCreateProfile))
	mux.Handle("GET /profiles/{id}", userOnly(s.handleGetProfile))
	mux.Handle("PUT /profiles/{id}", userOnly(s.handleUpdateProfile))
	mux.Handle("DELETE /profiles/{id}", userOnly(s.handleDeleteProfile))
	mux.Handle("POST /profiles/{id}/resumes", userOnly(s.handleGenerateResume))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort("", cfg.Port),
		Handler:     s.handler,
		ReadTimeout: 30 * time.Second,
		// model replies can take a while
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the server's root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.expireSessions(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if s.limiter != nil {
			s.limiter.Stop()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.log.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// expireSessions drops idle sessions until ctx is done.
func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(expireInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Expire(s.sessionTTL); n > 0 {
				s.log.Info("expired idle sessions", "count", n, "live", s.sessions.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

// withCORS adds CORS headers for the configured origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	anyOrigin := slices.Contains(s.allowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-endpoint budget
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request with its status and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// handleHealth reports liveness and the database state
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "disabled"
	if s.resumes != nil {
		database = "ok"
		if err := s.resumes.Ping(r.Context()); err != nil {
			database = "unavailable"
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": database,
		"sessions": s.sessions.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status and writes it. Server errors are logged and
// their details withheld from the client.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if status == http.StatusInternalServerError {
			s.errorResponse(w, status, "internal server error")
			return
		}
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID identifies the client by the IP in RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.Warn("rate limit exceeded",
		"client", s.extractClientID(r), "method", r.Method, "path", r.URL.Path, "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
