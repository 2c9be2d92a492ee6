package mocks

import (
	"context"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPaymentRepository - мок PaymentRepository для unit-тестов
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, record *entity.PaymentRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*entity.PaymentRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error {
	args := m.Called(ctx, bookingID, status)
	return args.Error(0)
}

// MockRatingRepository - мок RatingRepository для unit-тестов
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) AggregateByProperty(ctx context.Context) ([]entity.PropertyRatingAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PropertyRatingAggregate), args.Error(1)
}

func (m *MockRatingRepository) AggregateByHost(ctx context.Context) ([]entity.HostRatingAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.HostRatingAggregate), args.Error(1)
}

func (m *MockRatingRepository) ResetPropertyRatings(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingRepository) ResetHostRatings(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingRepository) SetPropertyRating(ctx context.Context, propertyID primitive.ObjectID, average float64, count int64) error {
	args := m.Called(ctx, propertyID, average, count)
	return args.Error(0)
}

func (m *MockRatingRepository) SetHostRating(ctx context.Context, hostID string, average float64, count int64) error {
	args := m.Called(ctx, hostID, average, count)
	return args.Error(0)
}

// MockBookingSweepRepository - мок BookingSweepRepository для unit-тестов
type MockBookingSweepRepository struct {
	mock.Mock
}

func (m *MockBookingSweepRepository) CompleteFinishedStays(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingSweepRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockRunStatusRepository - мок RunStatusRepository для unit-тестов
type MockRunStatusRepository struct {
	mock.Mock
}

func (m *MockRunStatusRepository) Save(ctx context.Context, run *entity.MaintenanceRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunStatusRepository) Get(ctx context.Context, job string) (*entity.MaintenanceRun, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MaintenanceRun), args.Error(1)
}
