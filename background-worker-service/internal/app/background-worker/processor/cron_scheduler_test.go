package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRatingMaintenanceService мок для RatingMaintenanceServiceInterface
type MockRatingMaintenanceService struct {
	mock.Mock
}

func (m *MockRatingMaintenanceService) RecomputeRatings(ctx context.Context) (*entity.MaintenanceRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MaintenanceRun), args.Error(1)
}

// MockBookingLifecycleService мок для BookingLifecycleServiceInterface
type MockBookingLifecycleService struct {
	mock.Mock
}

func (m *MockBookingLifecycleService) SweepBookings(ctx context.Context) (*entity.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SweepResult), args.Error(1)
}

func successfulRun() *entity.MaintenanceRun {
	return &entity.MaintenanceRun{
		Job:    entity.JobRatingRecompute,
		Status: entity.RunStatusSuccess,
	}
}

func TestNewCronScheduler(t *testing.T) {
	scheduler := NewCronScheduler(new(MockRatingMaintenanceService), new(MockBookingLifecycleService))

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Empty(t, scheduler.GetEntries())
}

func TestCronScheduler_Start_RunsInitialRecompute(t *testing.T) {
	ratingSvc := new(MockRatingMaintenanceService)
	lifecycleSvc := new(MockBookingLifecycleService)
	scheduler := NewCronScheduler(ratingSvc, lifecycleSvc)

	ratingSvc.On("RecomputeRatings", mock.Anything).Return(successfulRun(), nil)

	err := scheduler.Start(context.Background(), "0 4 * * *", "*/30 * * * *")
	defer scheduler.Stop()

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)
	// Пересчёт выполняется сразу при старте, не дожидаясь расписания
	ratingSvc.AssertNumberOfCalls(t, "RecomputeRatings", 1)
	lifecycleSvc.AssertNotCalled(t, "SweepBookings", mock.Anything)
}

func TestCronScheduler_Start_InvalidRecomputeSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockRatingMaintenanceService), new(MockBookingLifecycleService))

	err := scheduler.Start(context.Background(), "not a schedule", "*/30 * * * *")

	assert.Error(t, err)
}

func TestCronScheduler_Start_InvalidSweepSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockRatingMaintenanceService), new(MockBookingLifecycleService))

	err := scheduler.Start(context.Background(), "0 4 * * *", "61 * * * *")

	assert.Error(t, err)
}

func TestCronScheduler_Start_InitialRecomputeError_ContinuesWork(t *testing.T) {
	ratingSvc := new(MockRatingMaintenanceService)
	scheduler := NewCronScheduler(ratingSvc, new(MockBookingLifecycleService))

	ratingSvc.On("RecomputeRatings", mock.Anything).
		Return(nil, errors.New("mongodb unavailable"))

	err := scheduler.Start(context.Background(), "0 4 * * *", "*/30 * * * *")
	defer scheduler.Stop()

	// Сбой стартового пересчёта не должен валить сервис
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)
}

func TestCronScheduler_Stop_WaitsForRunningJobs(t *testing.T) {
	ratingSvc := new(MockRatingMaintenanceService)
	scheduler := NewCronScheduler(ratingSvc, new(MockBookingLifecycleService))

	ratingSvc.On("RecomputeRatings", mock.Anything).Return(successfulRun(), nil)

	err := scheduler.Start(context.Background(), "0 4 * * *", "*/30 * * * *")
	assert.NoError(t, err)

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
