package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSweepBookings_TransitionsBothStates(t *testing.T) {
	bookingRepo := new(mocks.MockBookingSweepRepository)
	svc := NewBookingLifecycleService(bookingRepo, 24*time.Hour)
	ctx := context.Background()

	bookingRepo.On("CompleteFinishedStays", ctx, mock.Anything).Return(int64(3), nil)
	bookingRepo.On("ExpireStalePending", ctx, mock.Anything).Return(int64(2), nil)

	result, err := svc.SweepBookings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), result.Completed)
	assert.Equal(t, int64(2), result.Expired)
	bookingRepo.AssertExpectations(t)
}

func TestSweepBookings_PendingCutoffUsesTTL(t *testing.T) {
	bookingRepo := new(mocks.MockBookingSweepRepository)
	svc := NewBookingLifecycleService(bookingRepo, 24*time.Hour)
	ctx := context.Background()

	bookingRepo.On("CompleteFinishedStays", ctx, mock.Anything).Return(int64(0), nil)
	bookingRepo.On("ExpireStalePending", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().Add(-24 * time.Hour)
		diff := cutoff.Sub(expected)
		return diff > -time.Minute && diff < time.Minute
	})).Return(int64(0), nil)

	_, err := svc.SweepBookings(ctx)

	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
}

func TestSweepBookings_CompleteFailureStopsSweep(t *testing.T) {
	bookingRepo := new(mocks.MockBookingSweepRepository)
	svc := NewBookingLifecycleService(bookingRepo, 24*time.Hour)
	ctx := context.Background()

	bookingRepo.On("CompleteFinishedStays", ctx, mock.Anything).
		Return(int64(0), errors.New("connection reset"))

	result, err := svc.SweepBookings(ctx)

	assert.Error(t, err)
	assert.Nil(t, result)
	bookingRepo.AssertNotCalled(t, "ExpireStalePending", mock.Anything, mock.Anything)
}

func TestSweepBookings_ExpireFailure(t *testing.T) {
	bookingRepo := new(mocks.MockBookingSweepRepository)
	svc := NewBookingLifecycleService(bookingRepo, 24*time.Hour)
	ctx := context.Background()

	bookingRepo.On("CompleteFinishedStays", ctx, mock.Anything).Return(int64(1), nil)
	bookingRepo.On("ExpireStalePending", ctx, mock.Anything).
		Return(int64(0), errors.New("connection reset"))

	result, err := svc.SweepBookings(ctx)

	assert.Error(t, err)
	assert.Nil(t, result)
}
