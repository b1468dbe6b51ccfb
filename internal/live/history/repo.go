package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Repo reads and writes the committed workout history.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// PreviousSets returns the sets logged for the exercise in the most
// recent completed workout of the user that contains it. The exercise is
// matched by template exercise id for plan workouts, by catalog id
// otherwise. No history yields an empty result.
func (r *Repo) PreviousSets(ctx context.Context, userID, exerciseRef string, planScoped bool) (_ []draft.Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "historyRepo.previousSets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise", exerciseRef),
		attribute.Bool("planScoped", planScoped),
	)

	refColumn := "exercise_id"
	if planScoped {
		refColumn = "template_exercise_id"
	}

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT s.exercise_type, s.set_number, s.drop_index, s.reps, s.weight, s.time_seconds, s.distance, s.notes
			FROM workout_history_set s
			WHERE s.%[1]s = $2 AND s.workout_history_id = (
				SELECT h.id FROM workout_history h
				JOIN workout_history_set hs ON hs.workout_history_id = h.id
				WHERE h.user_id = $1 AND hs.%[1]s = $2
				ORDER BY h.completed_at DESC
				LIMIT 1
			)
			ORDER BY s.set_number, s.drop_index;`, refColumn),
		userID, exerciseRef,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []draft.Set
	for rows.Next() {
		var (
			exType      string
			set         draft.Set
			reps        *int
			weight      *float64
			timeSeconds *int
			distance    *float64
		)
		if err := rows.Scan(&exType, &set.SetNumber, &set.DropIndex, &reps, &weight, &timeSeconds, &distance, &set.Notes); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if draft.ExerciseType(exType) == draft.ExerciseTypeCardio {
			set.Cardio = &draft.CardioValues{TimeSeconds: timeSeconds, Distance: distance}
		} else {
			set.Strength = &draft.StrengthValues{Reps: reps, Weight: weight}
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sets, nil
}

// Commit writes the finished draft into the workout history. Empty sets
// are not stored. Committing the same draft twice is a no-op.
func (r *Repo) Commit(ctx context.Context, d draft.Draft, completedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "historyRepo.commit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user", d.UserID),
		attribute.String("draft", d.ID),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var historyID int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout_history
				(draft_id, user_id, workout_id, plan_workout_id, title, started_at, completed_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (draft_id) DO NOTHING
			RETURNING id;`,
		d.ID, d.UserID, d.WorkoutID, d.PlanWorkoutID, d.Title, d.StartedAt, completedAt,
	).Scan(&historyID)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("history: draft %s already committed", d.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert workout history: %w", err)
	}

	batch := &pgx.Batch{}
	for _, ex := range d.Exercises {
		var templateExerciseID *string
		if d.PlanScoped() {
			templateExerciseID = &ex.ID
		}
		rows := append(append([]draft.Set{}, ex.Sets...), ex.Drops...)
		for _, s := range rows {
			if s.IsEmpty() {
				continue
			}
			var (
				reps, timeSeconds *int
				weight, distance  *float64
			)
			if s.Cardio != nil {
				timeSeconds, distance = s.Cardio.TimeSeconds, s.Cardio.Distance
			} else if s.Strength != nil {
				reps, weight = s.Strength.Reps, s.Strength.Weight
			}
			batch.Queue(
				`INSERT INTO workout_history_set
						(workout_history_id, exercise_id, template_exercise_id, exercise_type,
						 set_number, drop_index, reps, weight, time_seconds, distance, notes)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
				historyID, ex.ExerciseID, templateExerciseID, ex.Type.String(),
				s.SetNumber, s.DropIndex, reps, weight, timeSeconds, distance, s.Notes,
			)
		}
	}
	span.SetAttributes(attribute.Int("sets", batch.Len()))
	if batch.Len() == 0 {
		return nil
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert workout history sets: %w", err)
	}
	return nil
}
