package resume

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotOffered         = errors.New("no draft is offered")
	ErrDeleteNotConfirmed = errors.New("delete was not requested")
)

// DefaultLivePath is the route prefix of the live-session screen.
const DefaultLivePath = "/live"

type State string

const (
	StateIdle       State = "idle"
	StateOffered    State = "offered"
	StateSuppressed State = "suppressed"
)

//go:generate mockgen -source=$GOFILE -destination=gate_mocks_test.go -package=resume_test

type draftStore interface {
	LoadDraftForUser(ctx context.Context, userID string) *draft.Draft
	ClearDraft(ctx context.Context, userID string) error
}

// Offer is what the resume prompt shows.
type Offer struct {
	DraftID    string    `json:"draftId"`
	Title      string    `json:"title"`
	StartedAt  time.Time `json:"startedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	StartedAgo string    `json:"startedAgo"`
	SavedAgo   string    `json:"savedAgo"`
	// ConfirmPending is set once delete was requested and awaits confirmation.
	ConfirmPending bool `json:"confirmPending"`
}

// Gate decides whether an unfinished session of the user is offered for
// resuming on launch.
//
//	Idle       -> Offered     draft found, not on the live route
//	Idle       -> Suppressed  draft found, already on the live route
//	Offered    -> Suppressed  route enters the live path, or Continue
//	Offered    -> Idle        ConfirmDelete after RequestDelete
type Gate struct {
	userID   string
	store    draftStore
	livePath string

	mu             sync.Mutex
	state          State
	draft          *draft.Draft
	confirmPending bool
}

func NewGate(userID string, store draftStore, livePath string) *Gate {
	if livePath == "" {
		livePath = DefaultLivePath
	}
	return &Gate{
		userID:   userID,
		store:    store,
		livePath: livePath,
		state:    StateIdle,
	}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Check loads the last persisted draft, on mount and whenever the app
// returns to the foreground.
func (g *Gate) Check(ctx context.Context, route string) State {
	d := g.store.LoadDraftForUser(ctx, g.userID)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.draft = d
	switch {
	case d == nil:
		g.state = StateIdle
		g.confirmPending = false
	case g.onLiveRoute(route):
		g.state = StateSuppressed
		g.confirmPending = false
	default:
		g.state = StateOffered
	}
	log.Tracef("resume gate [%s]: check on %q -> %s", g.userID, route, g.state)
	return g.state
}

// RouteChanged hides the prompt once the live-session screen is entered.
// The draft itself is left alone.
func (g *Gate) RouteChanged(route string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateOffered && g.onLiveRoute(route) {
		g.state = StateSuppressed
		g.confirmPending = false
	}
	return g.state
}

// Continue accepts the offer and returns the draft to resume.
func (g *Gate) Continue() (draft.Draft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateOffered || g.draft == nil {
		return draft.Draft{}, ErrNotOffered
	}
	g.state = StateSuppressed
	g.confirmPending = false
	return g.draft.Clone(), nil
}

// RequestDelete asks for the delete confirmation, nothing is removed yet.
func (g *Gate) RequestDelete() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateOffered {
		return ErrNotOffered
	}
	g.confirmPending = true
	return nil
}

func (g *Gate) CancelDelete() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmPending = false
}

// ConfirmDelete purges the draft everywhere. The gate goes Idle even
// when the remote delete failed, the local copy is gone by then; the
// error is returned so the failure can be reported.
func (g *Gate) ConfirmDelete(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.confirmPending || g.state != StateOffered {
		return ErrDeleteNotConfirmed
	}

	err := g.store.ClearDraft(ctx, g.userID)
	g.state = StateIdle
	g.draft = nil
	g.confirmPending = false
	if err != nil {
		log.Warnf("resume gate [%s]: discard: %s", g.userID, err)
	}
	return err
}

// Offer returns the prompt content while a draft is offered.
func (g *Gate) Offer(now time.Time) (Offer, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateOffered || g.draft == nil {
		return Offer{}, false
	}
	return Offer{
		DraftID:        g.draft.ID,
		Title:          g.draft.Title,
		StartedAt:      g.draft.StartedAt,
		UpdatedAt:      g.draft.UpdatedAt,
		StartedAgo:     Ago(g.draft.StartedAt, now),
		SavedAgo:       Ago(g.draft.UpdatedAt, now),
		ConfirmPending: g.confirmPending,
	}, true
}

func (g *Gate) onLiveRoute(route string) bool {
	return route == g.livePath || strings.HasPrefix(route, strings.TrimSuffix(g.livePath, "/")+"/")
}

// coarse buckets only: seconds, minutes, hours, days
var agoMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d days %s", DivBy: humanize.Day},
}

// Ago renders the time between then and now, e.g. "5 minutes ago".
func Ago(then, now time.Time) string {
	return humanize.CustomRelTime(then, now, "ago", "from now", agoMagnitudes)
}

// Gates keeps one gate per user.
type Gates struct {
	store    draftStore
	livePath string

	mu    sync.Mutex
	gates map[string]*Gate
}

func NewGates(store draftStore, livePath string) *Gates {
	return &Gates{
		store:    store,
		livePath: livePath,
		gates:    make(map[string]*Gate),
	}
}

func (gs *Gates) For(userID string) *Gate {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	g, ok := gs.gates[userID]
	if !ok {
		g = NewGate(userID, gs.store, gs.livePath)
		gs.gates[userID] = g
	}
	return g
}

// Release drops the gate of the user unless a draft is being offered.
// Idle and suppressed gates carry nothing a fresh gate would not redo
// on the next Check.
func (gs *Gates) Release(userID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	g, ok := gs.gates[userID]
	if !ok {
		return
	}
	if st := g.State(); st == StateIdle || st == StateSuppressed {
		delete(gs.gates, userID)
	}
}

func (gs *Gates) Len() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.gates)
}
