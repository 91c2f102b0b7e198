package votes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "votes:"

// RedisStore keeps each restaurant's tally in a hash with "up" and "down"
// fields so both counters survive restarts and are shared across replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(placeID string) string {
	return keyPrefix + placeID
}

func (s *RedisStore) Get(ctx context.Context, placeID string) (VoteData, error) {
	fields, err := s.client.HGetAll(ctx, s.key(placeID)).Result()
	if err != nil {
		return VoteData{}, fmt.Errorf("get votes for %s: %w", placeID, err)
	}
	return tallyFromHash(fields), nil
}

func (s *RedisStore) Increment(ctx context.Context, placeID string, up bool) (VoteData, error) {
	field := "down"
	if up {
		field = "up"
	}

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, s.key(placeID), field, 1)
	getAll := pipe.HGetAll(ctx, s.key(placeID))
	if _, err := pipe.Exec(ctx); err != nil {
		return VoteData{}, fmt.Errorf("increment votes for %s: %w", placeID, err)
	}
	return tallyFromHash(getAll.Val()), nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]VoteData, error) {
	out := make(map[string]VoteData)

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read votes hash %s: %w", key, err)
		}
		out[key[len(keyPrefix):]] = tallyFromHash(fields)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan vote keys: %w", err)
	}
	return out, nil
}

func tallyFromHash(fields map[string]string) VoteData {
	up, _ := strconv.Atoi(fields["up"])
	down, _ := strconv.Atoi(fields["down"])
	return VoteData{Upvotes: up, Downvotes: down}
}
