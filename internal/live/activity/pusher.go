package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

const DefaultPushInterval = time.Second

//go:generate mockgen -source=$GOFILE -destination=pusher_mocks_test.go -package=activity_test

// Surface is the OS-level live-activity display of a session.
type Surface interface {
	Start(ctx context.Context, userID string, p Payload) error
	Update(ctx context.Context, userID string, p Payload) error
	Stop(ctx context.Context, userID string) error
}

// HistoryProvider returns the sets logged for an exercise in the last
// session that contained it.
type HistoryProvider interface {
	PreviousSets(ctx context.Context, userID, exerciseRef string, planScoped bool) ([]draft.Set, error)
}

// DraftSource gives the freshest draft at the time of the call.
type DraftSource interface {
	Current() (draft.Draft, bool)
}

// Pusher recomputes the payload of a session every interval and pushes
// it to the surface only when it changed.
type Pusher struct {
	source   DraftSource
	surface  Surface
	history  HistoryProvider
	metrics  *metrics.Manager
	interval time.Duration

	mu      sync.Mutex
	running bool
	userID  string
	cancel  context.CancelFunc
	done    chan struct{}

	pushMu   sync.Mutex
	lastPush []byte

	histMu sync.Mutex
	// refs already asked for, a miss is remembered too
	known History
}

func NewPusher(
	source DraftSource,
	surface Surface,
	history HistoryProvider,
	metricsManager *metrics.Manager,
	interval time.Duration,
) *Pusher {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &Pusher{
		source:   source,
		surface:  surface,
		history:  history,
		metrics:  metricsManager,
		interval: interval,
		known:    History{},
	}
}

// Start pushes the initial payload and starts the interval loop. It does
// nothing if there is no draft or the pusher already runs.
func (p *Pusher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	d, ok := p.source.Current()
	if !ok {
		return nil
	}
	p.userID = d.UserID

	if err := p.pushStart(ctx, d); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running = true

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if _, err := p.PushIfChanged(loopCtx); err != nil {
					log.Warnf("live activity: push for user %s failed: %s", d.UserID, err)
				}
			}
		}
	}()

	return nil
}

// PushIfChanged recomputes the payload and updates the surface when its
// serialized form differs from the last pushed one. It reports whether
// an update was sent.
func (p *Pusher) PushIfChanged(ctx context.Context) (bool, error) {
	p.pushMu.Lock()
	defer p.pushMu.Unlock()

	d, ok := p.source.Current()
	if !ok {
		return false, nil
	}

	payload := p.project(ctx, d)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	if bytes.Equal(encoded, p.lastPush) {
		return false, nil
	}

	if err := p.surface.Update(ctx, d.UserID, payload); err != nil {
		p.metrics.CounterLiveActivityPushes.WithLabelValues("update", "error").Inc()
		return false, err
	}
	p.metrics.CounterLiveActivityPushes.WithLabelValues("update", "ok").Inc()
	p.lastPush = encoded
	return true, nil
}

func (p *Pusher) pushStart(ctx context.Context, d draft.Draft) error {
	p.pushMu.Lock()
	defer p.pushMu.Unlock()

	payload := p.project(ctx, d)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.surface.Start(ctx, d.UserID, payload); err != nil {
		p.metrics.CounterLiveActivityPushes.WithLabelValues("start", "error").Inc()
		return err
	}
	p.metrics.CounterLiveActivityPushes.WithLabelValues("start", "ok").Inc()
	p.lastPush = encoded
	return nil
}

// Stop ends the loop and always tells the surface to stop.
func (p *Pusher) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done, userID := p.cancel, p.done, p.userID
	p.running = false
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	p.pushMu.Lock()
	p.lastPush = nil
	p.pushMu.Unlock()

	if userID == "" {
		if d, ok := p.source.Current(); ok {
			userID = d.UserID
		}
	}

	if err := p.surface.Stop(ctx, userID); err != nil {
		p.metrics.CounterLiveActivityPushes.WithLabelValues("stop", "error").Inc()
		return err
	}
	p.metrics.CounterLiveActivityPushes.WithLabelValues("stop", "ok").Inc()
	return nil
}

func (p *Pusher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pusher) project(ctx context.Context, d draft.Draft) Payload {
	return Project(d, p.lookupHistory(ctx, d))
}

// lookupHistory fetches the history of the open exercise once per
// session. A failed lookup is retried on the next tick.
func (p *Pusher) lookupHistory(ctx context.Context, d draft.Draft) History {
	i, ok := OpenExerciseIndex(d)
	if !ok || p.history == nil {
		return nil
	}
	ref := HistoryRef(d, d.Exercises[i])
	if ref == "" {
		return nil
	}

	p.histMu.Lock()
	defer p.histMu.Unlock()

	if sets, seen := p.known[ref]; seen {
		return History{ref: sets}
	}

	sets, err := p.history.PreviousSets(ctx, d.UserID, ref, d.PlanScoped())
	if err != nil {
		log.Errorf("live activity: previous sets of %s: %s", ref, err)
		return nil
	}
	if sets == nil {
		sets = []draft.Set{}
	}
	p.known[ref] = sets
	return History{ref: sets}
}
