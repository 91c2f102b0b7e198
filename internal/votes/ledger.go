// Package votes tracks community verification votes per restaurant and
// decides whether a tally clears the approval threshold.
package votes

import (
	"context"
	"log/slog"

	"dinehalal/internal/platform/config"
)

// Ledger records votes and evaluates the community approval predicate.
type Ledger struct {
	store            Store
	minVotes         int
	minApprovalRatio float64
	logger           *slog.Logger
}

func NewLedger(store Store, cfg config.VotesConfig, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:            store,
		minVotes:         cfg.MinVotes,
		minApprovalRatio: cfg.MinApprovalRatio,
		logger:           logger,
	}
}

// Upvote records a positive vote and returns the updated tally.
func (l *Ledger) Upvote(ctx context.Context, placeID string) (VoteData, error) {
	return l.record(ctx, placeID, true)
}

// Downvote records a negative vote and returns the updated tally.
func (l *Ledger) Downvote(ctx context.Context, placeID string) (VoteData, error) {
	return l.record(ctx, placeID, false)
}

func (l *Ledger) record(ctx context.Context, placeID string, up bool) (VoteData, error) {
	tally, err := l.store.Increment(ctx, placeID, up)
	if err != nil {
		return VoteData{}, err
	}
	if l.logger != nil {
		l.logger.DebugContext(ctx, "vote recorded",
			"place_id", placeID,
			"up", up,
			"upvotes", tally.Upvotes,
			"downvotes", tally.Downvotes,
		)
	}
	return tally, nil
}

// Get returns the current tally, zero for restaurants nobody has voted on.
func (l *Ledger) Get(ctx context.Context, placeID string) (VoteData, error) {
	return l.store.Get(ctx, placeID)
}

// All returns every non-zero tally keyed by place ID.
func (l *Ledger) All(ctx context.Context) (map[string]VoteData, error) {
	return l.store.All(ctx)
}

// IsVerified reports whether the restaurant's current tally clears the
// community threshold.
func (l *Ledger) IsVerified(ctx context.Context, placeID string) (bool, error) {
	tally, err := l.store.Get(ctx, placeID)
	if err != nil {
		return false, err
	}
	return l.Approved(tally), nil
}

// Approved reports whether the tally clears the community threshold: enough
// total votes and a high enough share of upvotes. Approval is recomputed on
// every read, so a later downvote can revoke it.
func (l *Ledger) Approved(tally VoteData) bool {
	return tally.Total() >= l.minVotes && tally.ApprovalRatio() >= l.minApprovalRatio
}
