//go:build integration

package votes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"dinehalal/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestGetUnknownReturnsZero() {
	tally, err := s.store.Get(s.ctx, "never-voted")
	s.Require().NoError(err)
	s.Equal(VoteData{}, tally)
}

func (s *RedisStoreSuite) TestIncrementRoundTrip() {
	tally, err := s.store.Increment(s.ctx, "p1", true)
	s.Require().NoError(err)
	s.Equal(VoteData{Upvotes: 1}, tally)

	tally, err = s.store.Increment(s.ctx, "p1", false)
	s.Require().NoError(err)
	s.Equal(VoteData{Upvotes: 1, Downvotes: 1}, tally)

	got, err := s.store.Get(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(tally, got)
}

func (s *RedisStoreSuite) TestAllListsEveryTally() {
	_, err := s.store.Increment(s.ctx, "p1", true)
	s.Require().NoError(err)
	_, err = s.store.Increment(s.ctx, "p2", false)
	s.Require().NoError(err)

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]VoteData{
		"p1": {Upvotes: 1},
		"p2": {Downvotes: 1},
	}, all)
}
