package memory

import (
	"time"

	"ai-studypal-be/internal/pkg/logger"
	"ai-studypal-be/pkg/session"

	"github.com/patrickmn/go-cache"
)

// StoreRegistry keeps one session.Store per user in memory. Entries expire
// after an hour idle so abandoned sessions don't pile up.
type StoreRegistry struct {
	cache *cache.Cache
	log   logger.ILogger
}

func NewStoreRegistry(log logger.ILogger) *StoreRegistry {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &StoreRegistry{cache: c, log: log}
}

// GetOrCreate returns the user's session store, creating an idle one on first
// touch. The created flag lets callers attach listeners exactly once. The Set
// also refreshes the TTL on every access.
func (r *StoreRegistry) GetOrCreate(userID string) (*session.Store, bool) {
	if x, found := r.cache.Get(userID); found {
		store := x.(*session.Store)
		r.cache.Set(userID, store, cache.DefaultExpiration)
		return store, false
	}
	store := session.NewStore(r.log)
	r.cache.Set(userID, store, cache.DefaultExpiration)
	return store, true
}

func (r *StoreRegistry) Delete(userID string) {
	r.cache.Delete(userID)
}
