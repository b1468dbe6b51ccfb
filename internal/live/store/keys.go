package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymlive/internal/live/draft"
)

// ScopeKind tells what a draft key is scoped to.
type ScopeKind string

const (
	ScopeWorkout     ScopeKind = "w"
	ScopePlanWorkout ScopeKind = "pw"

	adHocScopeID = "adhoc"
)

// KeySchema is one storage key format drafts were (or are) written
// under. Scoped schemas use <prefix>:<userId>:<scopeKind>:<scopeId>,
// unscoped ones a single <prefix>:<userId> key.
type KeySchema struct {
	Name   string
	Prefix string
	Scoped bool
}

// KeySchemas is ordered: the first entry is the one new drafts are
// written with, the rest are legacy formats still read and purged.
type KeySchemas []KeySchema

// DefaultKeySchemas lists every key format a draft may live under.
// Add new legacy formats at the end. No prefix may start with another
// prefix followed by ":", see Validate.
var DefaultKeySchemas = KeySchemas{
	{Name: "v2", Prefix: "gymlive-draft-v2", Scoped: true},
	{Name: "v1", Prefix: "gymlive-draft", Scoped: true},
	{Name: "v0", Prefix: "live_workout_draft", Scoped: false},
}

func (ks KeySchemas) Current() KeySchema {
	return ks[0]
}

// Validate rejects registries where the keys of one schema could be
// read as user keys of another one.
func (ks KeySchemas) Validate() error {
	if len(ks) == 0 {
		return fmt.Errorf("no key schemas")
	}
	for i, a := range ks {
		if a.Prefix == "" || strings.Contains(a.Prefix, "*") {
			return fmt.Errorf("key schema [%s]: invalid prefix %q", a.Name, a.Prefix)
		}
		for j, b := range ks {
			if i == j {
				continue
			}
			if a.Prefix == b.Prefix || strings.HasPrefix(b.Prefix, a.Prefix+":") {
				return fmt.Errorf("key schemas [%s] and [%s] overlap", a.Name, b.Name)
			}
		}
	}
	return nil
}

// UserPrefix is the prefix shared by all keys of the user under this
// schema. For unscoped schemas it is the full key.
func (s KeySchema) UserPrefix(userID string) string {
	if !s.Scoped {
		return fmt.Sprintf("%s:%s", s.Prefix, userID)
	}
	return fmt.Sprintf("%s:%s:", s.Prefix, userID)
}

// Key returns the key a draft is stored under with this schema.
func (s KeySchema) Key(d draft.Draft) string {
	if !s.Scoped {
		return s.UserPrefix(d.UserID)
	}
	kind, scopeID := scopeOf(d)
	return fmt.Sprintf("%s%s:%s", s.UserPrefix(d.UserID), kind, scopeID)
}

// UserKeys lists the keys of the user stored under this schema.
func (s KeySchema) UserKeys(ctx context.Context, kv KeyValueStore, userID string) ([]string, error) {
	if !s.Scoped {
		// exact key, listing by prefix would also match other users
		return []string{s.UserPrefix(userID)}, nil
	}
	keys, err := kv.ListKeys(ctx, s.UserPrefix(userID))
	if err != nil {
		return nil, err
	}
	owned := keys[:0]
	for _, key := range keys {
		if s.OwnsKey(key, userID) {
			owned = append(owned, key)
		}
	}
	return owned, nil
}

// OwnsKey reports whether key is a draft key of the user under this
// schema. A user id containing ":" lists keys of other users by
// prefix, so the remainder has to be exactly <w|pw>:<scopeId>.
func (s KeySchema) OwnsKey(key, userID string) bool {
	prefix := s.UserPrefix(userID)
	if !s.Scoped {
		return key == prefix
	}
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return false
	}
	kind, scopeID, ok := strings.Cut(rest, ":")
	if !ok || scopeID == "" || strings.Contains(scopeID, ":") {
		return false
	}
	return ScopeKind(kind) == ScopeWorkout || ScopeKind(kind) == ScopePlanWorkout
}

// scope ids end the key, a ":" in them would break OwnsKey
var scopeIDReplacer = strings.NewReplacer(":", "_")

func scopeOf(d draft.Draft) (ScopeKind, string) {
	if d.PlanWorkoutID != nil && *d.PlanWorkoutID != "" {
		return ScopePlanWorkout, scopeIDReplacer.Replace(*d.PlanWorkoutID)
	}
	if d.WorkoutID != nil && *d.WorkoutID != "" {
		return ScopeWorkout, scopeIDReplacer.Replace(*d.WorkoutID)
	}
	return ScopeWorkout, adHocScopeID
}
