package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultInterval = 5 * time.Second

type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// DraftSource gives the freshest draft at the time of the call. The
// returned draft must not share memory with the live one.
type DraftSource interface {
	Current() (draft.Draft, bool)
}

//go:generate mockgen -source=$GOFILE -destination=saver_mocks_test.go -package=autosave_test

type draftPersister interface {
	PersistDraft(ctx context.Context, d draft.Draft) error
}

// Saver periodically writes a snapshot of the draft to the draft store.
// A tick whose snapshot was already written is skipped, and a failed
// write is retried by the next tick.
type Saver struct {
	source    DraftSource
	persister draftPersister
	interval  time.Duration

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}

	flushMu       sync.Mutex
	lastDraftID   string
	lastUpdatedAt time.Time
	// set once by Stop, a closed saver never writes again
	closed atomic.Bool
}

func NewSaver(source DraftSource, persister draftPersister, interval time.Duration) *Saver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Saver{
		source:    source,
		persister: persister,
		interval:  interval,
		status:    StatusStopped,
	}
}

// Start launches the snapshot loop. Calling it on a running or paused
// saver does nothing.
func (s *Saver) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusStopped || s.closed.Load() {
		return
	}
	s.launch(ctx)
	s.status = StatusRunning
	log.Debugf("autosave: started, interval %s", s.interval)
}

// Pause stops the loop without flushing. The loop goroutine is gone
// when Pause returns.
func (s *Saver) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRunning {
		return
	}
	s.halt()
	s.status = StatusPaused
	log.Debugln("autosave: paused")
}

// Resume restarts a paused loop.
func (s *Saver) Resume(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPaused {
		return
	}
	s.launch(ctx)
	s.status = StatusRunning
	log.Debugln("autosave: resumed")
}

// Stop ends the loop for good, a stopped saver cannot be restarted and
// ignores Flush. Stop returns after a flush in flight has finished.
func (s *Saver) Stop() {
	s.mu.Lock()
	if s.status == StatusRunning {
		s.halt()
	}
	s.status = StatusStopped
	s.mu.Unlock()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if !s.closed.Swap(true) {
		log.Debugln("autosave: stopped")
	}
}

func (s *Saver) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusRunning
}

func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Flush writes the current draft if it changed since the last
// successful write. It does nothing once the saver is stopped, so a
// discarded draft is not written back.
func (s *Saver) Flush(ctx context.Context) (err error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed.Load() {
		return nil
	}

	snapshot, ok := s.source.Current()
	if !ok {
		return nil
	}
	if snapshot.ID == s.lastDraftID && snapshot.UpdatedAt.Equal(s.lastUpdatedAt) {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "autosave.flush")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("draft", snapshot.ID))

	if err := s.persister.PersistDraft(ctx, snapshot); err != nil {
		return err
	}
	s.lastDraftID = snapshot.ID
	s.lastUpdatedAt = snapshot.UpdatedAt
	return nil
}

// launch must be called with mu held.
func (s *Saver) launch(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if err := s.Flush(loopCtx); err != nil {
					log.Warnf("autosave: flush failed, retrying next tick: %s", err)
				}
			}
		}
	}()
}

// halt must be called with mu held.
func (s *Saver) halt() {
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}
