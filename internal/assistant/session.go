package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-assistant/internal/changes"
	"github.com/jonathan/resume-assistant/internal/resume"
)

// Session is one editing timeline: the latest document, the chat history and
// the changes proposed by the most recent reply. All mutations go through the
// session's lock. The model call runs outside it, so direct edits made while a
// reply is pending are kept and the reply's changes are applied on top of them.
type Session struct {
	ID string
	// Owner is the authenticated user's ID, empty for guest sessions.
	Owner string

	assistant *Assistant
	saver     Saver

	mu        sync.Mutex
	doc       resume.Document
	history   []Message
	pending   []changes.Change
	turn      uint64
	cancel    context.CancelFunc
	updatedAt time.Time
}

// View is a point-in-time copy of a session's state.
type View struct {
	ID        string           `json:"id"`
	Document  resume.Document  `json:"document"`
	History   []Message        `json:"history"`
	Pending   []changes.Change `json:"pending"`
	Busy      bool             `json:"busy"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewSession starts a session on doc. saver may be nil for sessions that are
// never persisted.
func NewSession(a *Assistant, doc resume.Document, saver Saver) *Session {
	return &Session{
		ID:        uuid.NewString(),
		assistant: a,
		saver:     saver,
		doc:       doc.Clone(),
		history:   []Message{},
		pending:   []changes.Change{},
		updatedAt: time.Now(),
	}
}

// Send asks the assistant about content. Any reply still in flight is
// cancelled and its changes are never applied. If this turn is itself
// superseded before the model answers, Send returns ErrSuperseded. A failed
// model call returns the fallback reply and the error; the session stays
// usable and the failed exchange is not added to the history.
func (s *Session) Send(ctx context.Context, content string) (*Reply, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.turn++
	turn := s.turn
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.pending = []changes.Change{}

	msg := Message{Role: RoleUser, Content: content}
	history := make([]Message, len(s.history), len(s.history)+1)
	copy(history, s.history)
	history = append(history, msg)
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	reply, err := s.assistant.ProposeChanges(ctx, history, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if s.turn != turn {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return reply, err
	}

	s.history = append(s.history, msg, Message{Role: RoleAssistant, Content: reply.Text})
	s.pending = reply.Changes
	s.updatedAt = time.Now()
	return reply, nil
}

// Cancel aborts the in-flight turn, if any, and forgets pending changes.
// It reports whether a turn was in flight.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	busy := s.cancel != nil
	if busy {
		s.cancel()
		s.cancel = nil
	}
	s.turn++
	s.pending = []changes.Change{}
	return busy
}

// Accept applies the changes proposed by the latest reply to the latest
// document, which may include edits made after the reply was requested.
func (s *Session) Accept(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, ErrNoPendingChanges
	}
	return s.applyLocked(ctx, s.pending)
}

// ApplyChanges applies an explicit candidate list, e.g. a reviewed subset of
// the pending changes. Pending changes are cleared either way.
func (s *Session) ApplyChanges(ctx context.Context, candidates []changes.Change) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, candidates)
}

func (s *Session) applyLocked(ctx context.Context, candidates []changes.Change) (*Result, error) {
	s.pending = []changes.Change{}
	result, err := s.assistant.ApplyAndPersist(ctx, s.doc, candidates, s.saver)
	s.doc = result.Document
	s.updatedAt = time.Now()
	return result, err
}

// Replace records a direct edit of the whole document and saves it. The
// document is kept even when saving fails.
func (s *Session) Replace(ctx context.Context, doc resume.Document) ([]resume.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = s.doc.ID
	}
	s.doc = doc.Clone()
	s.updatedAt = time.Now()

	if s.saver != nil {
		id, err := s.saver.Save(ctx, s.doc)
		if err != nil {
			return s.doc.Validate(), &SaveError{Cause: err}
		}
		if _, ok := s.saver.(Store); ok {
			s.doc.ID = id
		}
	}
	return s.doc.Validate(), nil
}

// SetTarget sets the job the resume is being tailored to.
func (s *Session) SetTarget(target *resume.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Target = target
	s.doc = doc
	s.updatedAt = time.Now()
}

// Document returns a copy of the latest document.
func (s *Session) Document() resume.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// View returns a copy of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Message, len(s.history))
	copy(history, s.history)
	pending := make([]changes.Change, len(s.pending))
	copy(pending, s.pending)
	return View{
		ID:        s.ID,
		Document:  s.doc.Clone(),
		History:   history,
		Pending:   pending,
		Busy:      s.cancel != nil,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return time.Now()
	}
	return s.updatedAt
}

// Sessions is the registry of live sessions, keyed by session ID.
type Sessions struct {
	assistant *Assistant

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty registry whose sessions use a.
func NewSessions(a *Assistant) *Sessions {
	return &Sessions{assistant: a, sessions: make(map[string]*Session)}
}

// Create registers a new session on doc.
func (r *Sessions) Create(doc resume.Document, saver Saver, owner string) *Session {
	s := NewSession(r.assistant, doc, saver)
	s.Owner = owner
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given ID.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete cancels any in-flight turn and removes the session.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Cancel()
	return nil
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire removes sessions idle for longer than ttl and returns how many were removed.
func (r *Sessions) Expire(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Cancel()
	}
	return len(stale)
}
