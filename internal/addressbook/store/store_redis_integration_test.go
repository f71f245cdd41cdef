//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"addressbook/internal/addressbook/models"
	"addressbook/internal/addressbook/store"
	"addressbook/pkg/platform/sentinel"
	"addressbook/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, store.WithRedisKey("test:addressbook"))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestLoadBeforeSave() {
	_, err := s.store.Load(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestRoundTripUsesSingleKey() {
	book := []models.Address{
		{ID: "c1_1", Street: "2 Edward Street", HouseNumber: "2", Postcode: "2133", City: "Sydney", FirstName: "John", LastName: "Smith"},
	}
	s.Require().NoError(s.store.Save(s.ctx, book))

	keys, err := s.redis.Client.Keys(s.ctx, "*").Result()
	s.Require().NoError(err)
	s.Equal([]string{"test:addressbook"}, keys)

	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(book, got)
}

func (s *RedisStoreSuite) TestCorruptDocument() {
	s.Require().NoError(s.redis.Client.Set(s.ctx, "test:addressbook", "not json", 0).Err())

	_, err := s.store.Load(s.ctx)
	s.Require().Error(err)
	s.NotErrorIs(err, sentinel.ErrNotFound)
}
