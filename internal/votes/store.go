package votes

import "context"

// Store persists vote tallies keyed by restaurant place ID. Get returns a
// zero tally for restaurants nobody has voted on.
type Store interface {
	Get(ctx context.Context, placeID string) (VoteData, error)
	Increment(ctx context.Context, placeID string, up bool) (VoteData, error)
	All(ctx context.Context) (map[string]VoteData, error)
}
