package votes

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory vote store used when Redis is not configured
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tallies map[string]VoteData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tallies: make(map[string]VoteData)}
}

func (s *MemoryStore) Get(_ context.Context, placeID string) (VoteData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tallies[placeID], nil
}

func (s *MemoryStore) Increment(_ context.Context, placeID string, up bool) (VoteData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tally := s.tallies[placeID]
	if up {
		tally.Upvotes++
	} else {
		tally.Downvotes++
	}
	s.tallies[placeID] = tally
	return tally, nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]VoteData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]VoteData, len(s.tallies))
	for id, tally := range s.tallies {
		out[id] = tally
	}
	return out, nil
}
