package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
	"github.com/2beens/gymlive/internal/telemetry/metrics"
	"github.com/2beens/gymlive/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// ErrRemoteDiscard marks a discard that cleared the local copy but
// could not reach the remote store.
var ErrRemoteDiscard = errors.New("remote draft discard failed")

type DraftStoreParams struct {
	Local KeyValueStore
	// Remote is optional, drafts stay local only when nil.
	Remote RemoteStore
	// Schemas defaults to DefaultKeySchemas.
	Schemas KeySchemas
	// RemoteFallback makes LoadDraftForUser read the remote store when
	// no local draft exists.
	RemoteFallback bool
	Metrics        *metrics.Manager
}

// DraftStore reads and writes drafts across every known key schema and
// forwards them to the remote store.
type DraftStore struct {
	local          KeyValueStore
	remote         RemoteStore
	schemas        KeySchemas
	remoteFallback bool
	metrics        *metrics.Manager
}

func NewDraftStore(params DraftStoreParams) *DraftStore {
	schemas := params.Schemas
	if len(schemas) == 0 {
		schemas = DefaultKeySchemas
	}
	if err := schemas.Validate(); err != nil {
		panic(fmt.Sprintf("draft store: %s", err))
	}
	return &DraftStore{
		local:          params.Local,
		remote:         params.Remote,
		schemas:        schemas,
		remoteFallback: params.RemoteFallback,
		metrics:        params.Metrics,
	}
}

// LoadDraftForUser returns the most recently updated draft of the user,
// or nil. Unreadable and corrupt records are logged and skipped.
func (s *DraftStore) LoadDraftForUser(ctx context.Context, userID string) *draft.Draft {
	ctx, span := tracing.GlobalTracer.Start(ctx, "draftStore.load")
	defer span.End()
	span.SetAttributes(attribute.String("user", userID))

	var latest *draft.Draft
	for _, schema := range s.schemas {
		keys, err := schema.UserKeys(ctx, s.local, userID)
		if err != nil {
			log.Errorf("draft store: list keys [%s] for user %s: %s", schema.Name, userID, err)
			continue
		}
		for _, key := range keys {
			raw, err := s.local.Get(ctx, key)
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}
			if err != nil {
				log.Errorf("draft store: get %s: %s", key, err)
				continue
			}
			d, err := decodeDraft(raw)
			if err != nil {
				log.Warnf("draft store: skipping corrupt draft %s: %s", key, err)
				continue
			}
			if d.UserID != userID {
				log.Errorf("draft store: key %s of user %s holds a draft of user %s", key, userID, d.UserID)
				continue
			}
			if latest == nil || d.UpdatedAt.After(latest.UpdatedAt) {
				latest = d
			}
		}
	}

	if latest == nil && s.remoteFallback && s.remote != nil {
		latest = s.loadRemote(ctx, userID)
	}

	span.SetAttributes(attribute.Bool("found", latest != nil))
	return latest
}

func (s *DraftStore) loadRemote(ctx context.Context, userID string) *draft.Draft {
	raw, err := s.remote.GetDraft(ctx, userID)
	if errors.Is(err, ErrDraftNotFound) {
		return nil
	}
	if err != nil {
		log.Errorf("draft store: get remote draft for user %s: %s", userID, err)
		return nil
	}
	d, err := decodeDraft(raw)
	if err != nil {
		log.Warnf("draft store: skipping corrupt remote draft of user %s: %s", userID, err)
		return nil
	}
	if d.UserID != userID {
		log.Errorf("draft store: remote draft of user %s belongs to user %s", userID, d.UserID)
		return nil
	}
	log.Debugf("draft store: draft %s of user %s loaded from remote", d.ID, userID)
	return d
}

// PersistDraft writes the draft under the current key schema, then
// forwards it to the remote store. Only the local write can fail the
// call, remote failures are logged and counted.
func (s *DraftStore) PersistDraft(ctx context.Context, d draft.Draft) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "draftStore.persist")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user", d.UserID),
		attribute.String("draft", d.ID),
	)

	start := time.Now()
	defer func() {
		s.metrics.HistDraftPersistDuration.Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	key := s.schemas.Current().Key(d)
	if err := s.local.Set(ctx, key, payload); err != nil {
		s.metrics.CounterPersistFailures.WithLabelValues("local").Inc()
		return fmt.Errorf("write draft %s: %w", key, err)
	}
	s.metrics.CounterDraftsPersisted.Inc()

	if s.remote != nil {
		if err := s.remote.UpsertDraft(ctx, d.UserID, payload); err != nil {
			s.metrics.CounterPersistFailures.WithLabelValues("remote").Inc()
			log.Warnf("draft store: remote upsert of draft %s failed: %s", d.ID, err)
		}
	}

	return nil
}

// ClearDraft removes every draft of the user under every key schema,
// then deletes the remote copy. All steps run even if one fails; a
// remote failure is wrapped with ErrRemoteDiscard.
func (s *DraftStore) ClearDraft(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "draftStore.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))

	var localErr error
	for _, schema := range s.schemas {
		keys, listErr := schema.UserKeys(ctx, s.local, userID)
		if listErr != nil {
			localErr = multierr.Append(localErr, fmt.Errorf("list keys [%s]: %w", schema.Name, listErr))
			continue
		}
		keys = s.withoutForeignDrafts(ctx, keys, userID)
		if delErr := s.local.Delete(ctx, keys...); delErr != nil {
			localErr = multierr.Append(localErr, fmt.Errorf("delete keys [%s]: %w", schema.Name, delErr))
		}
	}
	if localErr != nil {
		s.metrics.CounterDiscardFailures.WithLabelValues("local").Inc()
		err = multierr.Append(err, localErr)
	}

	if s.remote != nil {
		if remoteErr := s.remote.DeleteDraft(ctx, userID); remoteErr != nil {
			s.metrics.CounterDiscardFailures.WithLabelValues("remote").Inc()
			err = multierr.Append(err, fmt.Errorf("%w: %w", ErrRemoteDiscard, remoteErr))
		}
	}

	if err == nil {
		s.metrics.CounterDraftsDiscarded.Inc()
	}
	return err
}

// withoutForeignDrafts drops keys holding a readable draft of another
// user. Unreadable records stay in the list so corrupt drafts of the
// user are purged as well.
func (s *DraftStore) withoutForeignDrafts(ctx context.Context, keys []string, userID string) []string {
	owned := make([]string, 0, len(keys))
	for _, key := range keys {
		raw, err := s.local.Get(ctx, key)
		if err == nil {
			if d, decodeErr := decodeDraft(raw); decodeErr == nil && d.UserID != userID {
				log.Errorf("draft store: not clearing key %s of user %s, it holds a draft of user %s", key, userID, d.UserID)
				continue
			}
		}
		owned = append(owned, key)
	}
	return owned
}

func decodeDraft(raw []byte) (*draft.Draft, error) {
	var d draft.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if d.UserID == "" || d.StartedAt.IsZero() {
		return nil, errors.New("missing user id or start time")
	}
	draft.Normalize(&d)
	return &d, nil
}
