package verification

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// VerifiedIDStore maintains the set of currently verified place IDs. It is a
// queryable view derived from verification results, never a source of truth.
type VerifiedIDStore interface {
	Add(ctx context.Context, placeID string) error
	Remove(ctx context.Context, placeID string) error
	Members(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, placeIDs []string) error
}

// MemoryVerifiedIDs is the in-memory view used when Redis is not configured.
type MemoryVerifiedIDs struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewMemoryVerifiedIDs() *MemoryVerifiedIDs {
	return &MemoryVerifiedIDs{ids: make(map[string]struct{})}
}

func (s *MemoryVerifiedIDs) Add(_ context.Context, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[placeID] = struct{}{}
	return nil
}

func (s *MemoryVerifiedIDs) Remove(_ context.Context, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, placeID)
	return nil
}

func (s *MemoryVerifiedIDs) Members(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out, nil
}

func (s *MemoryVerifiedIDs) Replace(_ context.Context, placeIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(placeIDs))
	for _, id := range placeIDs {
		s.ids[id] = struct{}{}
	}
	return nil
}

const verifiedSetKey = "verified_ids"

// RedisVerifiedIDs keeps the view in a Redis set shared across replicas.
type RedisVerifiedIDs struct {
	client *redis.Client
}

func NewRedisVerifiedIDs(client *redis.Client) *RedisVerifiedIDs {
	return &RedisVerifiedIDs{client: client}
}

func (s *RedisVerifiedIDs) Add(ctx context.Context, placeID string) error {
	if err := s.client.SAdd(ctx, verifiedSetKey, placeID).Err(); err != nil {
		return fmt.Errorf("add verified id %s: %w", placeID, err)
	}
	return nil
}

func (s *RedisVerifiedIDs) Remove(ctx context.Context, placeID string) error {
	if err := s.client.SRem(ctx, verifiedSetKey, placeID).Err(); err != nil {
		return fmt.Errorf("remove verified id %s: %w", placeID, err)
	}
	return nil
}

func (s *RedisVerifiedIDs) Members(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, verifiedSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list verified ids: %w", err)
	}
	return ids, nil
}

func (s *RedisVerifiedIDs) Replace(ctx context.Context, placeIDs []string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, verifiedSetKey)
	if len(placeIDs) > 0 {
		members := make([]any, len(placeIDs))
		for i, id := range placeIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, verifiedSetKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace verified ids: %w", err)
	}
	return nil
}
