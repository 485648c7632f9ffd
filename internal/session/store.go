// Package session keeps the analysis of the paper currently on display.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
)

// MsgMissingID is reported when a load is requested without a paper id.
const MsgMissingID = "Paper id is required"

var (
	// ErrSuperseded is returned to a load whose response arrived after a newer load started.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrClosed is returned once the store has been torn down.
	ErrClosed = errors.New("session store closed")
)

// Status is the load lifecycle of the displayed paper.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Snapshot is a copy of the store state. Analysis is the last successful load for PaperID and
// stays populated while a reload is in flight or after it fails.
type Snapshot struct {
	Status      Status
	PaperID     string
	Analysis    paper.Analysis
	HasAnalysis bool
	Err         error
	LoadedAt    time.Time
}

// Fetcher retrieves the analysis for a paper.
type Fetcher interface {
	Summary(ctx context.Context, paperID string) (paper.Analysis, error)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store loads analyses on demand. Only the most recent load may change state.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	group   singleflight.Group
	now     func() time.Time

	mu     sync.Mutex
	token  uint64
	closed bool
	snap   Snapshot
}

// New returns an empty store.
func New(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Load fetches the analysis for paperID and makes it current. Concurrent loads of the same id
// share one request; a load overtaken by a newer one returns ErrSuperseded and leaves state alone.
func (s *Store) Load(ctx context.Context, paperID string) (paper.Analysis, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return paper.Analysis{}, service.Validation("summary", MsgMissingID)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return paper.Analysis{}, ErrClosed
	}
	s.token++
	token := s.token
	if s.snap.PaperID != paperID {
		s.snap = Snapshot{PaperID: paperID}
	}
	s.snap.Status = StatusLoading
	s.snap.Err = nil
	s.mu.Unlock()

	started := s.now()
	ch := s.group.DoChan(paperID, func() (any, error) {
		return s.fetcher.Summary(context.WithoutCancel(ctx), paperID)
	})

	var (
		analysis paper.Analysis
		err      error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err = res.Err
		if err == nil {
			analysis = res.Val.(paper.Analysis)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return paper.Analysis{}, ErrClosed
	}
	if token != s.token {
		s.logger.Debug("summary_superseded", "paper_id", paperID)
		return paper.Analysis{}, ErrSuperseded
	}
	if err != nil {
		s.snap.Status = StatusFailed
		s.snap.Err = err
		s.logger.Warn("summary_failed", "paper_id", paperID, "error", err, "duration", s.now().Sub(started))
		return paper.Analysis{}, err
	}
	s.snap = Snapshot{
		Status:      StatusLoaded,
		PaperID:     paperID,
		Analysis:    analysis,
		HasAnalysis: true,
		LoadedAt:    s.now(),
	}
	s.logger.Info("summary_loaded", "paper_id", paperID, "duration", s.now().Sub(started))
	return analysis, nil
}

// Reload re-fetches the current paper.
func (s *Store) Reload(ctx context.Context) (paper.Analysis, error) {
	return s.Load(ctx, s.Snapshot().PaperID)
}

// Close discards the state; responses still in flight are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token++
	s.snap = Snapshot{}
}
