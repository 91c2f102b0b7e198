package verification

import (
	"dinehalal/internal/registry"
	"dinehalal/internal/votes"
)

// Source tags where a verification verdict came from. Exactly one source is
// assigned per result.
type Source string

const (
	SourceOfficialRegistry Source = "official_registry"
	SourceCommunity        Source = "community"
	SourceNone             Source = "none"
)

// VerificationResult is the verdict for a single restaurant. It is derived
// state: recomputable at any time from the registry and the vote ledger.
type VerificationResult struct {
	PlaceID       string                  `json:"place_id"`
	IsVerified    bool                    `json:"is_verified"`
	Source        Source                  `json:"source"`
	Establishment *registry.Establishment `json:"establishment,omitempty"`
	Votes         *votes.VoteData         `json:"votes,omitempty"`
}

// StatusEvent is published whenever a restaurant's verification status is
// computed or changes.
type StatusEvent struct {
	PlaceID  string `json:"place_id"`
	Verified bool   `json:"verified"`
	Source   Source `json:"source"`
}
