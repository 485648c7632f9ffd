// Package chat holds question and answer sessions about a single paper.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/researchrag/internal/service"
)

// MsgEmptyQuestion is the validation message for blank questions.
const MsgEmptyQuestion = "Please enter a question"

var (
	// ErrInFlight is returned when a question is asked before the previous one is answered.
	ErrInFlight = errors.New("a question is already being answered")
	// ErrReset is returned to an answer that arrives after its session was dropped.
	ErrReset = errors.New("chat session was reset")
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session.
type Turn struct {
	Role    Role
	Content string
}

// Asker answers questions about a paper.
type Asker interface {
	Chat(ctx context.Context, paperID, query string) (string, error)
}

// Session is an append-only conversation bound to one paper. Turns are only added in pairs,
// after the service has answered.
type Session struct {
	ID      uuid.UUID
	PaperID string
	Started time.Time

	asker  Asker
	logger *slog.Logger

	mu      sync.Mutex
	turns   []Turn
	pending bool
	dropped bool
}

// NewSession starts an empty conversation about paperID.
func NewSession(paperID string, asker Asker, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		ID:      uuid.New(),
		PaperID: paperID,
		Started: time.Now(),
		asker:   asker,
		logger:  logger,
	}
}

// Ask sends question and, on success, appends the question and its answer.
func (s *Session) Ask(ctx context.Context, question string) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, service.Validation("chat", MsgEmptyQuestion)
	}

	s.mu.Lock()
	if s.dropped {
		s.mu.Unlock()
		return Turn{}, ErrReset
	}
	if s.pending {
		s.mu.Unlock()
		return Turn{}, ErrInFlight
	}
	s.pending = true
	s.mu.Unlock()

	answer, err := s.asker.Chat(ctx, s.PaperID, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if s.dropped {
		return Turn{}, ErrReset
	}
	if err != nil {
		s.logger.Warn("chat_failed", "session", s.ID.String(), "paper_id", s.PaperID, "error", err)
		return Turn{}, err
	}
	reply := Turn{Role: RoleAssistant, Content: answer}
	s.turns = append(s.turns, Turn{Role: RoleUser, Content: question}, reply)
	s.logger.Debug("chat_answered", "session", s.ID.String(), "paper_id", s.PaperID, "turns", len(s.turns))
	return reply, nil
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Pending reports whether a question is awaiting its answer.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) drop() {
	s.mu.Lock()
	s.dropped = true
	s.mu.Unlock()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller keeps one session per paper id.
type Controller struct {
	asker  Asker
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New returns a controller with no sessions.
func New(asker Asker, opts ...Option) *Controller {
	c := &Controller{
		asker:    asker,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session for paperID, creating it on first use.
func (c *Controller) Session(paperID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[paperID]
	if !ok {
		s = NewSession(paperID, c.asker, c.logger)
		c.sessions[paperID] = s
	}
	return s
}

// Ask forwards question to the paper's session.
func (c *Controller) Ask(ctx context.Context, paperID, question string) (Turn, error) {
	if strings.TrimSpace(paperID) == "" {
		return Turn{}, service.Validation("chat", "Paper id is required")
	}
	return c.Session(paperID).Ask(ctx, question)
}

// Turns returns the conversation for paperID, empty if none was started.
func (c *Controller) Turns(paperID string) []Turn {
	c.mu.Lock()
	s, ok := c.sessions[paperID]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Turns()
}

// Pending reports whether paperID has a question awaiting its answer.
func (c *Controller) Pending(paperID string) bool {
	c.mu.Lock()
	s, ok := c.sessions[paperID]
	c.mu.Unlock()
	return ok && s.Pending()
}

// Reset drops the session for paperID; an answer still in flight is discarded.
func (c *Controller) Reset(paperID string) {
	c.mu.Lock()
	s, ok := c.sessions[paperID]
	delete(c.sessions, paperID)
	c.mu.Unlock()
	if ok {
		s.drop()
	}
}
