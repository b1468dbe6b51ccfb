package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymlive/internal/live/activity"
	"github.com/2beens/gymlive/internal/live/autosave"
	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/metrics"
	"github.com/2beens/gymlive/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=session_test

type draftStore interface {
	PersistDraft(ctx context.Context, d draft.Draft) error
	ClearDraft(ctx context.Context, userID string) error
}

// ErrCommit means the finished workout could not be written to the
// history; the session and its draft are kept.
var ErrCommit = errors.New("commit workout")

// HistoryCommitter writes a finished session into the workout history.
type HistoryCommitter interface {
	Commit(ctx context.Context, d draft.Draft, completedAt time.Time) error
}

// Mutator is a pure draft transition, see the draft package.
type Mutator func(d draft.Draft, now time.Time) draft.Draft

// Session owns the live draft of one user. Mutations are serialized
// through it; the autosave loop and the live-activity pusher read
// snapshots of it through Current.
type Session struct {
	store     draftStore
	committer HistoryCommitter
	metrics   *metrics.Manager
	clock     func() time.Time

	saver  *autosave.Saver
	pusher *activity.Pusher

	mu    sync.RWMutex
	draft draft.Draft
}

var (
	_ autosave.DraftSource = (*Session)(nil)
	_ activity.DraftSource = (*Session)(nil)
)

// Current returns a deep copy of the live draft.
func (s *Session) Current() (draft.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Clone(), true
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.UserID
}

// Apply runs the mutator on the live draft. Mutations that leave the
// draft unchanged are reported and counted, never treated as errors.
func (s *Session) Apply(op string, mutate Mutator) (draft.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.draft.UpdatedAt
	next := mutate(s.draft, s.clock())
	changed := !next.UpdatedAt.Equal(before)
	if !changed {
		s.metrics.CounterIgnoredMutations.WithLabelValues(op).Inc()
		log.Tracef("session [%s]: %s left the draft unchanged", s.draft.UserID, op)
		return s.draft.Clone(), false
	}
	s.draft = next
	return next.Clone(), true
}

// ApplyIntent maps a client intent onto its mutator and applies it.
func (s *Session) ApplyIntent(in Intent) (draft.Draft, bool, error) {
	mutate, err := in.Mutator()
	if err != nil {
		return draft.Draft{}, false, err
	}
	d, changed := s.Apply(string(in.Op), mutate)
	return d, changed, nil
}

// PauseAutosave suspends snapshot writes, e.g. while a blocking dialog is
// open. Nothing is flushed.
func (s *Session) PauseAutosave() {
	s.saver.Pause()
}

func (s *Session) ResumeAutosave(ctx context.Context) {
	s.saver.Resume(ctx)
}

func (s *Session) AutosaveStatus() autosave.Status {
	return s.saver.Status()
}

// Flush writes the live draft now, if it changed since the last write.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// start must be given a context that outlives the request starting the
// session.
func (s *Session) start(ctx context.Context) {
	s.saver.Start(ctx)
	if err := s.pusher.Start(ctx); err != nil {
		log.Errorf("session [%s]: start live activity: %s", s.UserID(), err)
	}
}

func (s *Session) stopLoops(ctx context.Context) {
	s.saver.Stop()
	if err := s.pusher.Stop(ctx); err != nil {
		log.Errorf("session [%s]: stop live activity: %s", s.UserID(), err)
	}
}

// complete stops both loops and hands the draft to the history. Only
// then is the draft cleared.
func (s *Session) complete(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	wasRunning := s.saver.IsRunning()
	s.saver.Pause()
	d, _ := s.Current()
	span.SetAttributes(attribute.String("user", d.UserID), attribute.String("draft", d.ID))

	if err := s.committer.Commit(ctx, d, s.clock()); err != nil {
		// keep the draft, the user may retry
		if wasRunning {
			s.saver.Resume(context.WithoutCancel(ctx))
		}
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	s.metrics.CounterWorkoutsCompleted.Inc()

	s.stopLoops(ctx)
	if err := s.store.ClearDraft(ctx, d.UserID); err != nil {
		return fmt.Errorf("clear completed draft: %w", err)
	}
	return nil
}

func (s *Session) discard(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.discard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.stopLoops(ctx)
	return s.store.ClearDraft(ctx, s.UserID())
}
