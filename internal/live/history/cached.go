package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	cacheSize          = 16 * 1024 * 1024
	defaultCacheExpire = 10 * time.Minute
)

//go:generate mockgen -source=$GOFILE -destination=cached_mocks_test.go -package=history_test

type historyStore interface {
	PreviousSets(ctx context.Context, userID, exerciseRef string, planScoped bool) ([]draft.Set, error)
	Commit(ctx context.Context, d draft.Draft, completedAt time.Time) error
}

// Cached keeps previous-set lookups in memory. Committing a workout
// evicts the entries of its exercises.
type Cached struct {
	store  historyStore
	cache  *freecache.Cache
	expire time.Duration
}

func NewCached(store historyStore, expire time.Duration) *Cached {
	if expire <= 0 {
		expire = defaultCacheExpire
	}
	return &Cached{
		store:  store,
		cache:  freecache.NewCache(cacheSize),
		expire: expire,
	}
}

func (c *Cached) PreviousSets(ctx context.Context, userID, exerciseRef string, planScoped bool) ([]draft.Set, error) {
	key := cacheKey(userID, exerciseRef, planScoped)
	if cached, err := c.cache.Get(key); err == nil {
		var sets []draft.Set
		if err := json.Unmarshal(cached, &sets); err == nil {
			log.Tracef("history: previous sets of %s found in cache", exerciseRef)
			return sets, nil
		} else {
			log.Errorf("history: unmarshal cached previous sets of %s: %s", exerciseRef, err)
		}
	}

	sets, err := c.store.PreviousSets(ctx, userID, exerciseRef, planScoped)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(sets); err != nil {
		log.Errorf("history: marshal previous sets of %s: %s", exerciseRef, err)
	} else if err := c.cache.Set(key, encoded, int(c.expire.Seconds())); err != nil {
		log.Errorf("history: cache previous sets of %s: %s", exerciseRef, err)
	}

	return sets, nil
}

func (c *Cached) Commit(ctx context.Context, d draft.Draft, completedAt time.Time) error {
	if err := c.store.Commit(ctx, d, completedAt); err != nil {
		return err
	}
	for _, ex := range d.Exercises {
		c.cache.Del(cacheKey(d.UserID, ex.ExerciseID, false))
		c.cache.Del(cacheKey(d.UserID, ex.ID, true))
	}
	return nil
}

func cacheKey(userID, exerciseRef string, planScoped bool) []byte {
	scope := "ex"
	if planScoped {
		scope = "tpl"
	}
	return []byte(fmt.Sprintf("prev::%s::%s::%s", userID, scope, exerciseRef))
}
