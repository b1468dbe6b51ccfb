package store

import (
	"context"
	"errors"

	"github.com/2beens/gymlive/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ RemoteStore = (*PsqlRemoteStore)(nil)

// PsqlRemoteStore keeps the latest draft of each user in the
// live_workout_draft table.
type PsqlRemoteStore struct {
	db *pgxpool.Pool
}

func NewPsqlRemoteStore(db *pgxpool.Pool) *PsqlRemoteStore {
	return &PsqlRemoteStore{
		db: db,
	}
}

// UpsertDraft stores the payload unless the stored draft is newer, so a
// late write from a slow tick never overwrites a fresher one.
func (s *PsqlRemoteStore) UpsertDraft(ctx context.Context, userID string, payload []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.upsertDraft")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO live_workout_draft (user_id, payload, updated_at)
			VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
			SET payload = EXCLUDED.payload, updated_at = now()
			WHERE (live_workout_draft.payload->>'updatedAt')::timestamptz
				<= (EXCLUDED.payload->>'updatedAt')::timestamptz;`,
		userID, payload,
	)
	return err
}

func (s *PsqlRemoteStore) DeleteDraft(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.deleteDraft")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	_, err = s.db.Exec(ctx, `DELETE FROM live_workout_draft WHERE user_id = $1`, userID)
	return err
}

func (s *PsqlRemoteStore) GetDraft(ctx context.Context, userID string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.getDraft")
	defer func() {
		if errors.Is(err, ErrDraftNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	var payload []byte
	err = s.db.QueryRow(
		ctx,
		`SELECT payload FROM live_workout_draft WHERE user_id = $1`,
		userID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
