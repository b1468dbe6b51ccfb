package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2beens/gymlive/internal/live/activity"
	"github.com/2beens/gymlive/internal/live/autosave"
	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNoSession     = errors.New("no live session")
	ErrSessionExists = errors.New("a live session is already running")
	ErrShutdown      = errors.New("session manager is shut down")
)

type ManagerParams struct {
	Store            draftStore
	Committer        HistoryCommitter
	Surface          activity.Surface
	History          activity.HistoryProvider
	Metrics          *metrics.Manager
	AutosaveInterval time.Duration
	PushInterval     time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Manager keeps at most one live session per user.
type Manager struct {
	params ManagerParams

	mu       sync.Mutex
	sessions map[string]*Session
	// users whose session is being opened, the loops start unlocked
	opening map[string]struct{}
	closed  bool
}

func NewManager(params ManagerParams) *Manager {
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &Manager{
		params:   params,
		sessions: make(map[string]*Session),
		opening:  make(map[string]struct{}),
	}
}

// Start begins a new session from scratch.
func (m *Manager) Start(ctx context.Context, params draft.NewDraftParams) (*Session, error) {
	if params.StartedAt.IsZero() {
		params.StartedAt = m.params.Clock()
	}
	return m.open(ctx, draft.NewDraft(params))
}

// Resume continues a previously persisted draft. Resuming the draft that
// is already live returns its session.
func (m *Manager) Resume(ctx context.Context, d draft.Draft) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[d.UserID]; ok {
		m.mu.Unlock()
		if cur, _ := s.Current(); cur.ID == d.ID {
			return s, nil
		}
		return nil, ErrSessionExists
	}
	_, opening := m.opening[d.UserID]
	m.mu.Unlock()
	if opening {
		return nil, ErrSessionExists
	}

	draft.Normalize(&d)
	return m.open(ctx, d)
}

func (m *Manager) open(ctx context.Context, d draft.Draft) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrShutdown
	}
	_, live := m.sessions[d.UserID]
	_, opening := m.opening[d.UserID]
	if live || opening {
		m.mu.Unlock()
		return nil, ErrSessionExists
	}
	m.opening[d.UserID] = struct{}{}
	m.mu.Unlock()

	s := &Session{
		store:     m.params.Store,
		committer: m.params.Committer,
		metrics:   m.params.Metrics,
		clock:     m.params.Clock,
		draft:     d,
	}
	s.saver = autosave.NewSaver(s, m.params.Store, m.params.AutosaveInterval)
	s.pusher = activity.NewPusher(s, m.params.Surface, m.params.History, m.params.Metrics, m.params.PushInterval)

	// loops outlive the request that opened the session. Started
	// unlocked, the first push may wait on the live activity gateway.
	s.start(context.WithoutCancel(ctx))

	m.mu.Lock()
	delete(m.opening, d.UserID)
	if m.closed {
		m.mu.Unlock()
		s.stopLoops(ctx)
		return nil, ErrShutdown
	}
	m.sessions[d.UserID] = s
	m.params.Metrics.GaugeActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	log.Debugf("session [%s]: opened draft %s", d.UserID, d.ID)
	return s, nil
}

func (m *Manager) Get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Complete commits the session of the user to the history and clears
// its draft. A failed commit keeps the session alive.
func (m *Manager) Complete(ctx context.Context, userID string) error {
	s, err := m.Get(userID)
	if err != nil {
		return err
	}
	err = s.complete(ctx)
	if errors.Is(err, ErrCommit) {
		return err
	}
	m.remove(userID)
	return err
}

// Discard ends the session of the user and purges its draft everywhere.
// The session is gone even if the purge partially failed.
func (m *Manager) Discard(ctx context.Context, userID string) error {
	s, err := m.Get(userID)
	if err != nil {
		return err
	}
	defer m.remove(userID)
	return s.discard(ctx)
}

// Shutdown stops every session, flushing its latest state first. Drafts
// are kept so the sessions can be resumed.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.params.Metrics.GaugeActiveSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.saver.Pause()
		if err := s.Flush(ctx); err != nil {
			log.Errorf("session [%s]: final flush: %s", s.UserID(), err)
		}
		s.stopLoops(ctx)
	}
	log.Debugf("sessions: %d stopped", len(sessions))
}

func (m *Manager) remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	m.params.Metrics.GaugeActiveSessions.Set(float64(len(m.sessions)))
}
