package mocks

import (
	"context"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockTxnRunner мок для TxnRunner
// По умолчанию просто исполняет fn с тем же контекстом, без реальной транзакции
type MockTxnRunner struct {
	mock.Mock
}

func (m *MockTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockProfileRepository мок для ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) ApplyHostRating(ctx context.Context, hostID string, rating int) error {
	args := m.Called(ctx, hostID, rating)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPropertyRepository мок для PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *entity.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *MockPropertyRepository) Search(ctx context.Context, query *entity.PropertySearchQuery) ([]entity.Property, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByHostID(ctx context.Context, hostID string) ([]entity.Property, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *entity.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) AddPhoto(ctx context.Context, id primitive.ObjectID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockPropertyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status entity.PropertyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPropertyRepository) ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) DeleteByHostID(ctx context.Context, hostID string) error {
	args := m.Called(ctx, hostID)
	return args.Error(0)
}

// MockBookingRepository мок для BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByGuestID(ctx context.Context, guestID string) ([]entity.Booking, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByHostID(ctx context.Context, hostID string) ([]entity.Booking, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, limit, offset int64) ([]entity.Booking, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) HasOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, checkIn, checkOut)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.BookingStatus, cancellation *entity.Cancellation) error {
	args := m.Called(ctx, id, status, cancellation)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkReviewed(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByPropertyID(ctx context.Context, propertyID primitive.ObjectID) ([]entity.Review, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByGuestID(ctx context.Context, guestID string) ([]entity.Review, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) SetHostReply(ctx context.Context, id primitive.ObjectID, reply *entity.HostReply) error {
	args := m.Called(ctx, id, reply)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

func (m *MockReviewRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPropertyCache мок для Redis кеша объектов
type MockPropertyCache struct {
	mock.Mock
}

func (m *MockPropertyCache) SetProperty(ctx context.Context, property *entity.Property, ttl time.Duration) error {
	args := m.Called(ctx, property, ttl)
	return args.Error(0)
}

func (m *MockPropertyCache) GetProperty(ctx context.Context, propertyID string) (*entity.Property, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *MockPropertyCache) DeleteProperty(ctx context.Context, propertyID string) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

func (m *MockPropertyCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
