package service

import (
	"context"
	"errors"
	"testing"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/background-worker-service/internal/app/background-worker/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRatingService() (*RatingMaintenanceService, *mocks.MockRatingRepository, *mocks.MockRunStatusRepository) {
	ratingRepo := new(mocks.MockRatingRepository)
	runRepo := new(mocks.MockRunStatusRepository)
	return NewRatingMaintenanceService(ratingRepo, runRepo), ratingRepo, runRepo
}

func TestRecomputeRatings_Success(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	propA := primitive.NewObjectID()
	propB := primitive.NewObjectID()

	ratingRepo.On("AggregateByProperty", ctx).Return([]entity.PropertyRatingAggregate{
		{PropertyID: propA, Average: 4.5, Count: 2},
		{PropertyID: propB, Average: 3.0, Count: 1},
	}, nil)
	ratingRepo.On("AggregateByHost", ctx).Return([]entity.HostRatingAggregate{
		{HostID: "host-1", Average: 4.0, Count: 3},
	}, nil)
	ratingRepo.On("ResetPropertyRatings", ctx).Return(nil)
	ratingRepo.On("ResetHostRatings", ctx).Return(nil)
	ratingRepo.On("SetPropertyRating", ctx, propA, 4.5, int64(2)).Return(nil)
	ratingRepo.On("SetPropertyRating", ctx, propB, 3.0, int64(1)).Return(nil)
	ratingRepo.On("SetHostRating", ctx, "host-1", 4.0, int64(3)).Return(nil)
	runRepo.On("Save", ctx, mock.Anything).Return(nil)

	run, err := svc.RecomputeRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, entity.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(2), run.Properties)
	assert.Equal(t, int64(1), run.Hosts)
	ratingRepo.AssertExpectations(t)
	runRepo.AssertCalled(t, "Save", ctx, mock.MatchedBy(func(r *entity.MaintenanceRun) bool {
		return r.Job == entity.JobRatingRecompute && r.Status == entity.RunStatusSuccess
	}))
}

// Порядок пересчёта: сначала агрегация, затем обнуление всех агрегатов,
// затем перезапись. Нарушение порядка оставило бы устаревшие значения
// у объектов, потерявших все отзывы.
func TestRecomputeRatings_ResetBeforeOverwrite(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	propID := primitive.NewObjectID()
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}

	ratingRepo.On("AggregateByProperty", ctx).Run(record("aggregate_properties")).
		Return([]entity.PropertyRatingAggregate{{PropertyID: propID, Average: 5.0, Count: 1}}, nil)
	ratingRepo.On("AggregateByHost", ctx).Run(record("aggregate_hosts")).
		Return([]entity.HostRatingAggregate{}, nil)
	ratingRepo.On("ResetPropertyRatings", ctx).Run(record("reset_properties")).Return(nil)
	ratingRepo.On("ResetHostRatings", ctx).Run(record("reset_hosts")).Return(nil)
	ratingRepo.On("SetPropertyRating", ctx, propID, 5.0, int64(1)).Run(record("set_property")).Return(nil)
	runRepo.On("Save", ctx, mock.Anything).Return(nil)

	_, err := svc.RecomputeRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{
		"aggregate_properties", "aggregate_hosts",
		"reset_properties", "reset_hosts",
		"set_property",
	}, calls)
}

// Два запуска по одним и тем же отзывам перезаписывают агрегаты
// одинаковыми значениями
func TestRecomputeRatings_Idempotent(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	propID := primitive.NewObjectID()

	ratingRepo.On("AggregateByProperty", ctx).Return([]entity.PropertyRatingAggregate{
		{PropertyID: propID, Average: 3.67, Count: 3},
	}, nil)
	ratingRepo.On("AggregateByHost", ctx).Return([]entity.HostRatingAggregate{
		{HostID: "host-1", Average: 3.67, Count: 3},
	}, nil)
	ratingRepo.On("ResetPropertyRatings", ctx).Return(nil)
	ratingRepo.On("ResetHostRatings", ctx).Return(nil)
	ratingRepo.On("SetPropertyRating", ctx, propID, 3.67, int64(3)).Return(nil)
	ratingRepo.On("SetHostRating", ctx, "host-1", 3.67, int64(3)).Return(nil)
	runRepo.On("Save", ctx, mock.Anything).Return(nil)

	first, err := svc.RecomputeRatings(ctx)
	assert.NoError(t, err)
	second, err := svc.RecomputeRatings(ctx)
	assert.NoError(t, err)

	assert.Equal(t, first.Properties, second.Properties)
	assert.Equal(t, first.Hosts, second.Hosts)
	ratingRepo.AssertNumberOfCalls(t, "SetPropertyRating", 2)
	ratingRepo.AssertNumberOfCalls(t, "SetHostRating", 2)
}

func TestRecomputeRatings_AggregationFailure(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	ratingRepo.On("AggregateByProperty", ctx).Return(nil, errors.New("cursor timeout"))
	runRepo.On("Save", ctx, mock.Anything).Return(nil)

	run, err := svc.RecomputeRatings(ctx)

	assert.Error(t, err)
	assert.Equal(t, entity.RunStatusFailure, run.Status)
	assert.Contains(t, run.Error, "property aggregation failed")
	// Агрегаты не трогаем, пока не прочитали все отзывы
	ratingRepo.AssertNotCalled(t, "ResetPropertyRatings", mock.Anything)
	ratingRepo.AssertNotCalled(t, "ResetHostRatings", mock.Anything)
	runRepo.AssertCalled(t, "Save", ctx, mock.MatchedBy(func(r *entity.MaintenanceRun) bool {
		return r.Status == entity.RunStatusFailure
	}))
}

func TestRecomputeRatings_MissingPropertySkipped(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	existing := primitive.NewObjectID()
	deleted := primitive.NewObjectID()

	ratingRepo.On("AggregateByProperty", ctx).Return([]entity.PropertyRatingAggregate{
		{PropertyID: deleted, Average: 2.0, Count: 1},
		{PropertyID: existing, Average: 4.0, Count: 2},
	}, nil)
	ratingRepo.On("AggregateByHost", ctx).Return([]entity.HostRatingAggregate{}, nil)
	ratingRepo.On("ResetPropertyRatings", ctx).Return(nil)
	ratingRepo.On("ResetHostRatings", ctx).Return(nil)
	ratingRepo.On("SetPropertyRating", ctx, deleted, 2.0, int64(1)).Return(repository.ErrNotFound)
	ratingRepo.On("SetPropertyRating", ctx, existing, 4.0, int64(2)).Return(nil)
	runRepo.On("Save", ctx, mock.Anything).Return(nil)

	run, err := svc.RecomputeRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, entity.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(1), run.Properties)
}

func TestRecomputeRatings_RunStatusSaveFailureNonFatal(t *testing.T) {
	svc, ratingRepo, runRepo := newRatingService()
	ctx := context.Background()

	ratingRepo.On("AggregateByProperty", ctx).Return([]entity.PropertyRatingAggregate{}, nil)
	ratingRepo.On("AggregateByHost", ctx).Return([]entity.HostRatingAggregate{}, nil)
	ratingRepo.On("ResetPropertyRatings", ctx).Return(nil)
	ratingRepo.On("ResetHostRatings", ctx).Return(nil)
	runRepo.On("Save", ctx, mock.Anything).Return(errors.New("redis down"))

	run, err := svc.RecomputeRatings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, entity.RunStatusSuccess, run.Status)
}
