package repository

import (
	"context"
	"testing"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RunStatusRepositoryTestSuite тестовый suite для Redis repository
type RunStatusRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      RunStatusRepository
}

func TestRunStatusRepositorySuite(t *testing.T) {
	suite.Run(t, new(RunStatusRepositoryTestSuite))
}

func (s *RunStatusRepositoryTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.repo = NewRunStatusRepository(s.client, time.Hour)
}

func (s *RunStatusRepositoryTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RunStatusRepositoryTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RunStatusRepositoryTestSuite) TestSaveGet_RoundTrip() {
	ctx := context.Background()

	run := &entity.MaintenanceRun{
		Job:        entity.JobRatingRecompute,
		Status:     entity.RunStatusSuccess,
		StartedAt:  time.Now().Add(-time.Minute).UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
		Properties: 12,
		Hosts:      5,
	}

	err := s.repo.Save(ctx, run)
	s.NoError(err)

	got, err := s.repo.Get(ctx, entity.JobRatingRecompute)
	s.NoError(err)
	s.Equal(entity.RunStatusSuccess, got.Status)
	s.Equal(int64(12), got.Properties)
	s.Equal(int64(5), got.Hosts)
	s.True(got.FinishedAt.Equal(run.FinishedAt))
}

func (s *RunStatusRepositoryTestSuite) TestSave_OverwritesPreviousRun() {
	ctx := context.Background()

	first := &entity.MaintenanceRun{
		Job:    entity.JobRatingRecompute,
		Status: entity.RunStatusFailure,
		Error:  "property aggregation failed",
	}
	s.NoError(s.repo.Save(ctx, first))

	second := &entity.MaintenanceRun{
		Job:        entity.JobRatingRecompute,
		Status:     entity.RunStatusSuccess,
		Properties: 3,
	}
	s.NoError(s.repo.Save(ctx, second))

	got, err := s.repo.Get(ctx, entity.JobRatingRecompute)
	s.NoError(err)
	s.Equal(entity.RunStatusSuccess, got.Status)
	s.Empty(got.Error)
}

func (s *RunStatusRepositoryTestSuite) TestGet_NotFound() {
	got, err := s.repo.Get(context.Background(), entity.JobBookingSweep)

	s.ErrorIs(err, ErrNotFound)
	s.Nil(got)
}

func (s *RunStatusRepositoryTestSuite) TestSave_RespectsTTL() {
	ctx := context.Background()

	run := &entity.MaintenanceRun{
		Job:    entity.JobBookingSweep,
		Status: entity.RunStatusSuccess,
	}
	s.NoError(s.repo.Save(ctx, run))

	s.miniRedis.FastForward(2 * time.Hour)

	_, err := s.repo.Get(ctx, entity.JobBookingSweep)
	s.ErrorIs(err, ErrNotFound)
}
