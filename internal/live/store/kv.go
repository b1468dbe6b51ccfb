package store

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrDraftNotFound = errors.New("draft not found")
)

// KeyValueStore is the local durable store the drafts are written to.
type KeyValueStore interface {
	// Get returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys, missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// ListKeys returns all keys starting with prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// RemoteStore keeps one draft per user so another device or session
// can resume it.
type RemoteStore interface {
	UpsertDraft(ctx context.Context, userID string, payload []byte) error
	DeleteDraft(ctx context.Context, userID string) error
	// GetDraft returns ErrDraftNotFound if the user has no remote draft.
	GetDraft(ctx context.Context, userID string) ([]byte, error)
}
