//go:build integration_test || all_tests

package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/2beens/gymlive/internal/db"
	"github.com/2beens/gymlive/internal/live/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postres host: %s", host)

	params := db.NewDBPoolParams{
		DBHost:  host,
		DBPort:  "5432",
		DBName:  "gymlive",
		SSLMode: "disable",
	}
	require.NoError(t, db.RunMigrations(params.DSN()))

	dbPool, err := db.NewDBPool(timeoutCtx, params)
	require.NoError(t, err)

	_, err = dbPool.Exec(timeoutCtx, `DELETE FROM workout_history`)
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func floatPtr(f float64) *float64 { return &f }

func loggedDraft(t *testing.T, id string, startedAt time.Time, weights ...float64) draft.Draft {
	t.Helper()
	d := draft.NewDraft(draft.NewDraftParams{
		UserID:    "u1",
		Title:     "Leg Day",
		StartedAt: startedAt,
		Exercises: []draft.Exercise{
			draft.NewExercise("", "squat", "Squat", draft.ExerciseTypeStrength, len(weights)),
			draft.NewExercise("", "bike", "Bike", draft.ExerciseTypeCardio, 1),
		},
	})
	d.ID = id
	now := startedAt
	for i, w := range weights {
		now = now.Add(time.Minute)
		d = draft.UpdateSetValue(d, draft.SetValueUpdate{
			ExerciseIndex: 0, SetNumber: i + 1, Field: draft.FieldWeight, Value: floatPtr(w),
		}, now)
		d = draft.UpdateSetValue(d, draft.SetValueUpdate{
			ExerciseIndex: 0, SetNumber: i + 1, Field: draft.FieldReps, Value: floatPtr(5),
		}, now)
	}
	return d
}

func TestRepo_CommitAndPreviousSets(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()
	ctx := context.Background()

	sets, err := repo.PreviousSets(ctx, "u1", "squat", false)
	require.NoError(t, err)
	assert.Empty(t, sets)

	monday := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	wednesday := monday.Add(48 * time.Hour)

	require.NoError(t, repo.Commit(ctx, loggedDraft(t, "d-mon", monday, 100, 105), monday.Add(time.Hour)))
	require.NoError(t, repo.Commit(ctx, loggedDraft(t, "d-wed", wednesday, 110, 115, 120), wednesday.Add(time.Hour)))

	sets, err = repo.PreviousSets(ctx, "u1", "squat", false)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	for i, want := range []float64{110, 115, 120} {
		assert.Equal(t, i+1, sets[i].SetNumber)
		require.NotNil(t, sets[i].Strength)
		require.NotNil(t, sets[i].Strength.Weight)
		assert.Equal(t, want, *sets[i].Strength.Weight)
		require.NotNil(t, sets[i].Strength.Reps)
		assert.Equal(t, 5, *sets[i].Strength.Reps)
	}

	// the untouched cardio set is empty and never stored
	sets, err = repo.PreviousSets(ctx, "u1", "bike", false)
	require.NoError(t, err)
	assert.Empty(t, sets)

	sets, err = repo.PreviousSets(ctx, "u2", "squat", false)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestRepo_CommitTwiceIsNoop(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()
	ctx := context.Background()

	started := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	d := loggedDraft(t, "d-once", started, 80)
	require.NoError(t, repo.Commit(ctx, d, started.Add(time.Hour)))
	require.NoError(t, repo.Commit(ctx, d, started.Add(2*time.Hour)))

	var count int
	require.NoError(t, repo.db.QueryRow(ctx, `SELECT count(*) FROM workout_history_set`).Scan(&count))
	assert.Equal(t, 1, count)
}
