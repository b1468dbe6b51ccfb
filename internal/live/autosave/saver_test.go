package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/2beens/gymlive/internal/live/autosave"
	"github.com/2beens/gymlive/internal/live/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func testDraft() draft.Draft {
	return draft.NewDraft(draft.NewDraftParams{
		UserID:    "u1",
		Title:     "Leg Day",
		StartedAt: t0,
		Exercises: []draft.Exercise{
			draft.NewExercise("", "squat", "Squat", draft.ExerciseTypeStrength, 3),
		},
	})
}

type cell struct {
	mu sync.Mutex
	d  *draft.Draft
}

func (c *cell) Current() (draft.Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.d == nil {
		return draft.Draft{}, false
	}
	return c.d.Clone(), true
}

func (c *cell) set(d draft.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.d = &d
}

type recordingPersister struct {
	mu     sync.Mutex
	writes []draft.Draft
}

func (p *recordingPersister) PersistDraft(_ context.Context, d draft.Draft) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, d)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.writes)
}

func (p *recordingPersister) last() draft.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes[len(p.writes)-1]
}

func TestSaver_FlushSkipsUnchangedDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	sourceMock := NewMockDraftSource(ctrl)
	persisterMock := NewMockdraftPersister(ctrl)
	saver := autosave.NewSaver(sourceMock, persisterMock, time.Hour)

	d := testDraft()
	sourceMock.EXPECT().Current().Return(d, true).Times(2)
	persisterMock.EXPECT().PersistDraft(gomock.Any(), d).Return(nil).Times(1)

	require.NoError(t, saver.Flush(context.Background()))
	require.NoError(t, saver.Flush(context.Background()))

	changed := draft.OpenExercise(d, 0, t0.Add(time.Minute))
	sourceMock.EXPECT().Current().Return(changed, true)
	persisterMock.EXPECT().PersistDraft(gomock.Any(), changed).Return(nil)
	require.NoError(t, saver.Flush(context.Background()))
}

func TestSaver_FlushRetriesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sourceMock := NewMockDraftSource(ctrl)
	persisterMock := NewMockdraftPersister(ctrl)
	saver := autosave.NewSaver(sourceMock, persisterMock, time.Hour)

	d := testDraft()
	sourceMock.EXPECT().Current().Return(d, true).Times(3)
	gomock.InOrder(
		persisterMock.EXPECT().PersistDraft(gomock.Any(), d).Return(errors.New("disk full")),
		persisterMock.EXPECT().PersistDraft(gomock.Any(), d).Return(nil),
	)

	require.Error(t, saver.Flush(context.Background()))
	require.NoError(t, saver.Flush(context.Background()))
	// written now, nothing left to do
	require.NoError(t, saver.Flush(context.Background()))
}

func TestSaver_FlushWithoutDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	sourceMock := NewMockDraftSource(ctrl)
	persisterMock := NewMockdraftPersister(ctrl)
	saver := autosave.NewSaver(sourceMock, persisterMock, time.Hour)

	sourceMock.EXPECT().Current().Return(draft.Draft{}, false)
	require.NoError(t, saver.Flush(context.Background()))
}

func TestSaver_StartPauseResumeStop(t *testing.T) {
	source := &cell{}
	persister := &recordingPersister{}
	saver := autosave.NewSaver(source, persister, 10*time.Millisecond)
	ctx := context.Background()

	assert.Equal(t, autosave.StatusStopped, saver.Status())
	assert.False(t, saver.IsRunning())

	d := testDraft()
	source.set(d)

	saver.Start(ctx)
	saver.Start(ctx) // no-op
	assert.True(t, saver.IsRunning())
	assert.Equal(t, autosave.StatusRunning, saver.Status())

	require.Eventually(t, func() bool {
		return persister.count() == 1
	}, time.Second, 5*time.Millisecond)

	saver.Pause()
	assert.Equal(t, autosave.StatusPaused, saver.Status())
	assert.False(t, saver.IsRunning())

	// edits made while paused are not written
	d = draft.UpdateSetValue(d, draft.SetValueUpdate{
		ExerciseIndex: 0, SetNumber: 1, Field: draft.FieldReps, Value: floatPtr(10),
	}, t0.Add(time.Minute))
	source.set(d)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, persister.count())

	saver.Resume(ctx)
	assert.Equal(t, autosave.StatusRunning, saver.Status())
	require.Eventually(t, func() bool {
		return persister.count() == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 10, *persister.last().Exercises[0].Sets[0].Strength.Reps)

	saver.Stop()
	assert.Equal(t, autosave.StatusStopped, saver.Status())

	// a stopped saver never writes again, even after resume
	source.set(draft.OpenExercise(d, 0, t0.Add(2*time.Minute)))
	saver.Resume(ctx)
	assert.Equal(t, autosave.StatusStopped, saver.Status())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, persister.count())
}

func TestSaver_FlushAfterStopWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	persister := NewMockdraftPersister(ctrl)
	source := &cell{}
	source.set(testDraft())
	saver := autosave.NewSaver(source, persister, time.Hour)
	ctx := context.Background()

	saver.Start(ctx)
	saver.Stop()

	// no PersistDraft expected: a late flush request must not bring a
	// discarded draft back
	require.NoError(t, saver.Flush(ctx))

	saver.Start(ctx)
	assert.Equal(t, autosave.StatusStopped, saver.Status())
	require.NoError(t, saver.Flush(ctx))
}

func TestSaver_StopWaitsForFlushInFlight(t *testing.T) {
	source := &cell{}
	source.set(testDraft())
	entered := make(chan struct{})
	release := make(chan struct{})
	persister := &gatedPersister{entered: entered, release: release}
	saver := autosave.NewSaver(source, persister, time.Hour)
	ctx := context.Background()

	flushed := make(chan error, 1)
	go func() {
		flushed <- saver.Flush(ctx)
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		saver.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a flush was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-flushed)
	<-stopped
	assert.Equal(t, 1, persister.calls)
}

type gatedPersister struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (g *gatedPersister) PersistDraft(_ context.Context, _ draft.Draft) error {
	g.calls++
	close(g.entered)
	<-g.release
	return nil
}

func TestSaver_StopCancelsLoopContext(t *testing.T) {
	source := &cell{}
	source.set(testDraft())

	started := make(chan struct{})
	blocked := &blockingPersister{started: started}
	saver := autosave.NewSaver(source, blocked, 5*time.Millisecond)

	saver.Start(context.Background())
	<-started
	// Stop returns only once the in-flight write saw its context canceled
	saver.Stop()
	assert.ErrorIs(t, blocked.err, context.Canceled)
}

type blockingPersister struct {
	once    sync.Once
	started chan struct{}
	err     error
}

func (b *blockingPersister) PersistDraft(ctx context.Context, _ draft.Draft) error {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	b.err = ctx.Err()
	return b.err
}

func floatPtr(f float64) *float64 {
	return &f
}
