package votes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dinehalal/internal/platform/config"
)

type LedgerSuite struct {
	suite.Suite
	ctx    context.Context
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = NewLedger(NewMemoryStore(), config.VotesConfig{
		MinVotes:         5,
		MinApprovalRatio: 0.75,
	}, nil)
}

func (s *LedgerSuite) vote(placeID string, up, down int) VoteData {
	var tally VoteData
	var err error
	for range up {
		tally, err = s.ledger.Upvote(s.ctx, placeID)
		s.Require().NoError(err)
	}
	for range down {
		tally, err = s.ledger.Downvote(s.ctx, placeID)
		s.Require().NoError(err)
	}
	return tally
}

func (s *LedgerSuite) TestZeroTallyForUnknownRestaurant() {
	tally, err := s.ledger.Get(s.ctx, "never-voted")
	s.Require().NoError(err)
	s.Equal(VoteData{}, tally)
	s.False(s.ledger.Approved(tally))
}

func (s *LedgerSuite) TestApprovalThreshold() {
	s.Run("four up one down approves", func() {
		tally := s.vote("p1", 4, 1)
		s.Equal(5, tally.Total())
		s.True(s.ledger.Approved(tally))
	})

	s.Run("below minimum total never approves", func() {
		tally := s.vote("p2", 4, 0)
		s.False(s.ledger.Approved(tally))
	})

	s.Run("ratio below threshold rejects", func() {
		tally := s.vote("p3", 3, 2)
		s.False(s.ledger.Approved(tally))
	})

	s.Run("exact boundary approves", func() {
		// 6 of 8 is exactly 0.75.
		tally := s.vote("p4", 6, 2)
		s.True(s.ledger.Approved(tally))
	})
}

func (s *LedgerSuite) TestDownvoteRevokesApproval() {
	tally := s.vote("p5", 4, 1)
	s.True(s.ledger.Approved(tally))

	tally, err := s.ledger.Downvote(s.ctx, "p5")
	s.Require().NoError(err)
	s.False(s.ledger.Approved(tally))
}

func (s *LedgerSuite) TestIsVerified() {
	ok, err := s.ledger.IsVerified(s.ctx, "p8")
	s.Require().NoError(err)
	s.False(ok)

	s.vote("p8", 4, 1)

	ok, err = s.ledger.IsVerified(s.ctx, "p8")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *LedgerSuite) TestTalliesAreIndependent() {
	s.vote("p6", 5, 0)
	s.vote("p7", 0, 2)

	all, err := s.ledger.All(s.ctx)
	s.Require().NoError(err)
	s.Equal(VoteData{Upvotes: 5}, all["p6"])
	s.Equal(VoteData{Downvotes: 2}, all["p7"])
}
