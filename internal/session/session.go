// Package session holds the client-side interaction state machine: the
// current document, the chat history, and the upload/ask controllers.
// All state transitions funnel through SubmitUpload and SubmitQuestion.
package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/validate"
)

// Status is the controller state. Exactly one network operation may be
// outstanding; a second submission while InFlight is rejected as a no-op.
type Status int

const (
	// StatusIdle means no network operation is outstanding.
	StatusIdle Status = iota
	// StatusInFlight means an upload or ask call is outstanding.
	StatusInFlight
)

func (s Status) String() string {
	if s == StatusInFlight {
		return "in-flight"
	}
	return "idle"
}

// Backend is the remote collaborator consumed by the session. Implemented
// by backend.Client; tests substitute stubs.
type Backend interface {
	Upload(ctx context.Context, filename string, r io.Reader) error
	Ask(ctx context.Context, question string, history []models.ChatTurn) (*models.AskResponse, error)
}

// Candidate is a file the user selected for upload, before validation.
type Candidate struct {
	Name      string
	MediaType string
	Size      int64
	Data      io.Reader
}

// Session is the single mutable state container observed by the rendering
// layer. Mutation happens only inside the two Submit operations; the status
// flag is always cleared after the state it guards has been written.
type Session struct {
	mu        sync.Mutex
	backend   Backend
	status    Status
	file      *models.UploadedFile
	history   []models.ChatTurn
	lastErr   string
	pending   string
	onHistory func(length int)
	newID     func() string
}

// New creates a session over the given backend.
func New(b Backend) *Session {
	return &Session{
		backend: b,
		newID:   uuid.NewString,
	}
}

// OnHistoryChange registers fn to run whenever the history length changes.
// The rendering layer uses this to scroll to the newest turn.
func (s *Session) OnHistoryChange(fn func(length int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHistory = fn
}

// SubmitUpload validates the candidate and, if accepted, sends it to the
// backend. On success the session adopts the file and clears the history;
// on failure the file is cleared and the history kept. A nil candidate and
// a submission while in flight are no-ops.
func (s *Session) SubmitUpload(ctx context.Context, c *Candidate) {
	if c == nil {
		return
	}

	s.mu.Lock()
	if s.status == StatusInFlight {
		s.mu.Unlock()
		return
	}
	if err := validate.Check(c.MediaType, c.Size); err != nil {
		// Rejected locally: report the reason, touch nothing else, and
		// never contact the backend.
		s.lastErr = err.Error()
		s.mu.Unlock()
		return
	}
	s.status = StatusInFlight
	s.lastErr = ""
	s.mu.Unlock()

	err := s.backend.Upload(ctx, c.Name, c.Data)

	s.mu.Lock()
	prevLen := len(s.history)
	if err != nil {
		s.file = nil
		s.lastErr = "upload failed: " + causeText(err)
	} else {
		s.file = &models.UploadedFile{Name: c.Name, MediaType: c.MediaType, Size: c.Size}
		s.history = nil
		s.lastErr = ""
	}
	newLen := len(s.history)
	fn := s.onHistory
	s.status = StatusIdle
	s.mu.Unlock()

	if fn != nil && newLen != prevLen {
		fn(newLen)
	}
}

// SubmitQuestion sends the trimmed question with the prior turns to the
// backend and appends the resulting turn. It is a no-op when the trimmed
// text is empty, no file is present, or a call is already in flight.
// On failure the pending input is preserved so the user can retry.
func (s *Session) SubmitQuestion(ctx context.Context, raw string) {
	question := strings.TrimSpace(raw)

	s.mu.Lock()
	if question == "" || s.file == nil || s.status == StatusInFlight {
		s.mu.Unlock()
		return
	}
	s.status = StatusInFlight
	s.lastErr = ""
	prior := append([]models.ChatTurn(nil), s.history...)
	s.mu.Unlock()

	answer, err := s.backend.Ask(ctx, question, prior)

	s.mu.Lock()
	prevLen := len(s.history)
	if err != nil {
		s.lastErr = "ask failed: " + causeText(err)
	} else {
		s.history = append(s.history, models.ChatTurn{
			ID:       s.newID(),
			Question: question,
			Answer:   answer.Answer,
			Context:  answer.Context,
		})
		s.pending = ""
		s.lastErr = ""
	}
	newLen := len(s.history)
	fn := s.onHistory
	s.status = StatusIdle
	s.mu.Unlock()

	if fn != nil && newLen != prevLen {
		fn(newLen)
	}
}

// CanAsk reports whether a question submission would be accepted right now.
// The UI disables its submit affordance when this is false.
func (s *Session) CanAsk() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil && s.status == StatusIdle && strings.TrimSpace(s.pending) != ""
}

// Status returns the current controller state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// File returns the current uploaded file, or nil when none is present.
func (s *Session) File() *models.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	f := *s.file
	return &f
}

// History returns a copy of the chat turns in chronological order.
func (s *Session) History() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatTurn(nil), s.history...)
}

// Err returns the most recent error message, or "" when the last operation
// of either kind succeeded.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pending returns the question text the user has typed but not yet sent.
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetPending stores the in-progress question text. Typing is never gated by
// the in-flight status; only submission is.
func (s *Session) SetPending(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = text
}

// causeText extracts a human-readable description from err, falling back to
// a generic phrase when the error carries no text.
func causeText(err error) string {
	if err == nil || err.Error() == "" {
		return "unexpected error"
	}
	return err.Error()
}
