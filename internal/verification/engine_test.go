package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"dinehalal/internal/platform/config"
	"dinehalal/internal/registry"
	"dinehalal/internal/registry/ingest"
	"dinehalal/internal/restaurants"
	"dinehalal/internal/votes"
)

type stubSource struct {
	text  string
	err   error
	block chan struct{}
}

func (s *stubSource) FetchDocument(ctx context.Context) (string, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []StatusEvent
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) all() []StatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]StatusEvent(nil), p.events...)
}

func (p *capturingPublisher) last() StatusEvent {
	events := p.all()
	if len(events) == 0 {
		return StatusEvent{}
	}
	return events[len(events)-1]
}

const registryDoc = "name,address\n" +
	"Oasis Grill,\"123 Main St, Brooklyn, NY 11201\"\n" +
	"Mezze Point,\"45 Fifth Ave, New York, NY 10001\"\n"

type EngineSuite struct {
	suite.Suite
	ctx       context.Context
	source    *stubSource
	registry  *registry.Store
	ledger    *votes.Ledger
	publisher *capturingPublisher
	verified  *MemoryVerifiedIDs
	engine    *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.source = &stubSource{text: registryDoc}
	s.buildEngine()
}

func (s *EngineSuite) buildEngine() {
	s.registry = registry.NewStore(s.source, ingest.NewExtractor(nil), nil, nil)
	s.ledger = votes.NewLedger(votes.NewMemoryStore(), config.VotesConfig{
		MinVotes:         5,
		MinApprovalRatio: 0.75,
	}, nil)
	s.publisher = &capturingPublisher{}
	s.verified = NewMemoryVerifiedIDs()
	s.engine = NewEngine(s.registry, s.ledger, s.publisher, s.verified, nil, nil, time.Second)
}

func (s *EngineSuite) loadRegistry() {
	s.Require().NoError(s.registry.Load(s.ctx))
}

func (s *EngineSuite) upvote(placeID string, n int) VerificationResult {
	var result VerificationResult
	var err error
	for range n {
		result, err = s.engine.Upvote(s.ctx, placeID)
		s.Require().NoError(err)
	}
	return result
}

var oasis = restaurants.Restaurant{
	PlaceID:  "place-oasis",
	Name:     "Oasis Grill",
	Vicinity: "123 Main St, Brooklyn, NY 11201",
}

var unknown = restaurants.Restaurant{
	PlaceID:  "place-unknown",
	Name:     "Some Diner",
	Vicinity: "9 Nowhere Rd, Albany, NY 12207",
}

func (s *EngineSuite) assertSingleSource(result VerificationResult) {
	s.Equal(result.IsVerified, result.Source != SourceNone)
	if result.Source == SourceOfficialRegistry {
		s.NotNil(result.Establishment)
	} else {
		s.Nil(result.Establishment)
	}
}

func (s *EngineSuite) TestRegistryMatchWinsOverVotes() {
	s.loadRegistry()
	s.upvote(oasis.PlaceID, 5)
	s.publisher.events = nil

	result := s.engine.Verify(s.ctx, oasis)

	s.True(result.IsVerified)
	s.Equal(SourceOfficialRegistry, result.Source)
	s.Require().NotNil(result.Establishment)
	s.Equal("Oasis Grill", result.Establishment.Name)
	s.assertSingleSource(result)

	s.Equal(StatusEvent{PlaceID: oasis.PlaceID, Verified: true, Source: SourceOfficialRegistry}, s.publisher.last())
}

func (s *EngineSuite) TestCommunityFallback() {
	s.loadRegistry()
	s.upvote(unknown.PlaceID, 5)

	result := s.engine.Verify(s.ctx, unknown)

	s.True(result.IsVerified)
	s.Equal(SourceCommunity, result.Source)
	s.Require().NotNil(result.Votes)
	s.Equal(5, result.Votes.Upvotes)
	s.assertSingleSource(result)
}

func (s *EngineSuite) TestZeroVotesNotVerified() {
	s.loadRegistry()

	result := s.engine.Verify(s.ctx, unknown)

	s.False(result.IsVerified)
	s.Equal(SourceNone, result.Source)
	s.Require().NotNil(result.Votes)
	s.Equal(0, result.Votes.Total())
	s.assertSingleSource(result)

	s.Equal(StatusEvent{PlaceID: unknown.PlaceID, Verified: false, Source: SourceNone}, s.publisher.last())
}

func (s *EngineSuite) TestVerifyIsIdempotentAndCached() {
	s.loadRegistry()

	first := s.engine.Verify(s.ctx, oasis)
	second := s.engine.Verify(s.ctx, oasis)

	s.Equal(first, second)
	// Second call served from cache, no second status event.
	s.Len(s.publisher.all(), 1)
}

func (s *EngineSuite) TestDownvoteRevokesCommunityVerification() {
	s.loadRegistry()
	s.engine.Verify(s.ctx, unknown)

	result := s.upvote(unknown.PlaceID, 4)
	s.False(result.IsVerified)

	result, err := s.engine.Downvote(s.ctx, unknown.PlaceID)
	s.Require().NoError(err)
	s.True(result.IsVerified)
	s.Equal(SourceCommunity, result.Source)

	result, err = s.engine.Downvote(s.ctx, unknown.PlaceID)
	s.Require().NoError(err)
	s.False(result.IsVerified)
	s.Equal(SourceNone, result.Source)

	last := s.publisher.last()
	s.False(last.Verified)
	s.Equal(SourceNone, last.Source)
}

func (s *EngineSuite) TestVotesDoNotDowngradeOfficialVerdict() {
	s.loadRegistry()

	result := s.engine.Verify(s.ctx, oasis)
	s.Equal(SourceOfficialRegistry, result.Source)

	voted, err := s.engine.Downvote(s.ctx, oasis.PlaceID)
	s.Require().NoError(err)
	s.True(voted.IsVerified)
	s.Equal(SourceOfficialRegistry, voted.Source)
	s.Require().NotNil(voted.Votes)
	s.Equal(1, voted.Votes.Downvotes)
}

func (s *EngineSuite) TestVoteAfterReloadKeepsOfficialVerdict() {
	s.loadRegistry()

	result := s.engine.Verify(s.ctx, oasis)
	s.Equal(SourceOfficialRegistry, result.Source)

	// The reload drops every cached verdict; the vote below must re-run the
	// full algorithm, not fall back to the raw tally.
	s.Require().NoError(s.registry.Reload(s.ctx))

	voted, err := s.engine.Downvote(s.ctx, oasis.PlaceID)
	s.Require().NoError(err)
	s.True(voted.IsVerified)
	s.Equal(SourceOfficialRegistry, voted.Source)

	last := s.publisher.last()
	s.True(last.Verified)
	s.Equal(SourceOfficialRegistry, last.Source)

	ids, err := s.verified.Members(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{oasis.PlaceID}, ids)
}

func (s *EngineSuite) TestVoteWithoutListingIsNotPublished() {
	s.loadRegistry()

	result, err := s.engine.Upvote(s.ctx, "never-verified")
	s.Require().NoError(err)
	s.False(result.IsVerified)
	s.Require().NotNil(result.Votes)
	s.Equal(1, result.Votes.Upvotes)

	// Without a listing the registry side is unknown, so nothing is
	// published and the verified-ID view stays untouched.
	s.Empty(s.publisher.all())
	ids, err := s.verified.Members(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *EngineSuite) TestStaleVerdictNotCachedAfterInvalidation() {
	gen := s.engine.generation()
	stale := VerificationResult{PlaceID: oasis.PlaceID, Source: SourceNone}

	// Completing the load bumps the cache generation.
	s.loadRegistry()

	s.engine.storeResult(stale, gen)
	_, ok := s.engine.cachedResult(oasis.PlaceID)
	s.False(ok)

	result := s.engine.Verify(s.ctx, oasis)
	s.Equal(SourceOfficialRegistry, result.Source)
}

func (s *EngineSuite) TestEmptyRegistryFallsBackToCommunity() {
	s.source.text = ""
	s.source.err = errors.New("document missing")
	s.loadRegistry()
	s.upvote(unknown.PlaceID, 5)

	result := s.engine.Verify(s.ctx, unknown)

	s.True(result.IsVerified)
	s.Equal(SourceCommunity, result.Source)
}

func (s *EngineSuite) TestVerifyDuringLoadAnswersFromCommunity() {
	s.source.block = make(chan struct{})

	result := s.engine.Verify(s.ctx, oasis)
	s.False(result.IsVerified)
	s.Equal(SourceNone, result.Source)

	// Let the triggered background load finish, which clears the cache.
	close(s.source.block)
	waitCtx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	s.Require().NoError(s.registry.WaitLoaded(waitCtx))

	s.Eventually(func() bool {
		return s.engine.Verify(s.ctx, oasis).Source == SourceOfficialRegistry
	}, time.Second, 10*time.Millisecond)
}

func (s *EngineSuite) TestVerifyAllWaitsForLoad() {
	results := s.engine.VerifyAll(s.ctx, []restaurants.Restaurant{oasis, unknown})

	s.Require().Len(results, 2)
	s.Equal(SourceOfficialRegistry, results[oasis.PlaceID].Source)
	s.Equal(SourceNone, results[unknown.PlaceID].Source)
	for _, result := range results {
		s.assertSingleSource(result)
	}
}

func (s *EngineSuite) TestVerifiedIDViewTracksStatus() {
	s.loadRegistry()

	s.engine.Verify(s.ctx, oasis)
	s.engine.Verify(s.ctx, unknown)

	ids, err := s.verified.Members(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{oasis.PlaceID}, ids)
}

func (s *EngineSuite) TestPublishFailureIsNotFatal() {
	s.loadRegistry()
	s.publisher.err = errors.New("broker down")

	result := s.engine.Verify(s.ctx, oasis)
	s.True(result.IsVerified)
}

func (s *EngineSuite) TestReconcileRebuildsView() {
	s.loadRegistry()
	s.upvote(unknown.PlaceID, 5)
	s.engine.Verify(s.ctx, oasis)

	// Seed the view with a stale entry.
	s.Require().NoError(s.verified.Add(s.ctx, "stale-id"))

	s.Require().NoError(s.engine.Reconcile(s.ctx))

	ids, err := s.verified.Members(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{oasis.PlaceID, unknown.PlaceID}, ids)
}
