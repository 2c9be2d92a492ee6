package util

import (
	"context"
	"testing"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyCacheTestSuite тестовый suite для Redis кеша объектов
type PropertyCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	cache     *RedisClient
}

func TestPropertyCacheSuite(t *testing.T) {
	suite.Run(t, new(PropertyCacheTestSuite))
}

func (s *PropertyCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.cache, err = NewRedisClient(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)
}

func (s *PropertyCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *PropertyCacheTestSuite) TearDownSuite() {
	s.cache.Close()
	s.miniRedis.Close()
}

func (s *PropertyCacheTestSuite) TestSetGet_RoundTrip() {
	ctx := context.Background()

	property := &entity.Property{
		ID:            primitive.NewObjectID(),
		HostID:        "host-1",
		Title:         "Garden studio",
		PricePerNight: 85,
		Status:        entity.PropertyStatusActive,
		Rating:        entity.PropertyRating{Average: 4.5, Count: 12},
	}

	err := s.cache.SetProperty(ctx, property, time.Minute)
	s.NoError(err)

	cached, err := s.cache.GetProperty(ctx, property.ID.Hex())
	s.NoError(err)
	s.NotNil(cached)
	s.Equal(property.ID, cached.ID)
	s.Equal("Garden studio", cached.Title)
	s.Equal(4.5, cached.Rating.Average)
	s.Equal(int64(12), cached.Rating.Count)
}

func (s *PropertyCacheTestSuite) TestGet_Miss() {
	cached, err := s.cache.GetProperty(context.Background(), primitive.NewObjectID().Hex())

	s.NoError(err)
	s.Nil(cached)
}

func (s *PropertyCacheTestSuite) TestDelete_Invalidates() {
	ctx := context.Background()

	property := &entity.Property{ID: primitive.NewObjectID(), Title: "To be evicted"}
	s.NoError(s.cache.SetProperty(ctx, property, time.Minute))

	s.NoError(s.cache.DeleteProperty(ctx, property.ID.Hex()))

	cached, err := s.cache.GetProperty(ctx, property.ID.Hex())
	s.NoError(err)
	s.Nil(cached)
}

func (s *PropertyCacheTestSuite) TestTTL_Expires() {
	ctx := context.Background()

	property := &entity.Property{ID: primitive.NewObjectID(), Title: "Short lived"}
	s.NoError(s.cache.SetProperty(ctx, property, time.Minute))

	// miniredis позволяет перемотать время вперед
	s.miniRedis.FastForward(2 * time.Minute)

	cached, err := s.cache.GetProperty(ctx, property.ID.Hex())
	s.NoError(err)
	s.Nil(cached)
}
