package cooldown

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps cooldowns in process memory. It is only correct for a
// single API instance.
type MemoryStore struct {
	store *gocache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	// Add fails while an unexpired item exists
	err := s.store.Add(key, struct{}{}, ttl)
	if err == nil {
		return true, 0, nil
	}

	_, expiresAt, found := s.store.GetWithExpiration(key)
	if !found {
		// expired between Add and Get
		if s.store.Add(key, struct{}{}, ttl) == nil {
			return true, 0, nil
		}

		return false, ttl, nil
	}

	return false, max(time.Until(expiresAt), 0), nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.store.Delete(key)

	return nil
}
