//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/marketplace-service/internal/app/marketplace/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// noopPublisher заглушает Kafka в интеграционных тестах:
// транзакция отзыва не зависит от брокера.
type noopPublisher struct{}

func (p *noopPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (p *noopPublisher) Close() error { return nil }

// MarketplaceIntegrationTestSuite - интеграционные тесты единицы работы
// создания отзыва и проверки пересечения дат.
// Требует MongoDB с replica set (docker-compose.test.yml).
type MarketplaceIntegrationTestSuite struct {
	suite.Suite
	mongoClient *mongo.Client
	mongoDB     *mongo.Database

	reviewRepo   repository.ReviewRepository
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	profileRepo  repository.ProfileRepository
	reviewSvc    *service.ReviewService
}

func TestMarketplaceIntegrationSuite(t *testing.T) {
	suite.Run(t, new(MarketplaceIntegrationTestSuite))
}

func (s *MarketplaceIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017/?replicaSet=rs0"))
	require.NoError(s.T(), err, "Failed to connect to MongoDB")
	require.NoError(s.T(), mongoClient.Ping(ctx, nil))
	s.mongoClient = mongoClient
	s.mongoDB = mongoClient.Database("marketplace_service_itest")

	s.reviewRepo = repository.NewReviewRepository(s.mongoDB)
	s.bookingRepo = repository.NewBookingRepository(s.mongoDB)
	s.propertyRepo = repository.NewPropertyRepository(s.mongoDB)
	s.profileRepo = repository.NewProfileRepository(s.mongoDB)

	s.reviewSvc = service.NewReviewService(
		s.reviewRepo,
		s.bookingRepo,
		s.propertyRepo,
		s.profileRepo,
		repository.NewTxnRunner(s.mongoClient),
		&noopPublisher{},
	)
}

func (s *MarketplaceIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	s.mongoDB.Drop(ctx)
	s.mongoClient.Disconnect(ctx)
}

func (s *MarketplaceIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	for _, name := range []string{"reviews", "properties", "profiles", "bookings"} {
		_, err := s.mongoDB.Collection(name).DeleteMany(ctx, bson.M{})
		require.NoError(s.T(), err)
	}
}

func (s *MarketplaceIntegrationTestSuite) seedProperty(hostID string) primitive.ObjectID {
	ctx := context.Background()

	property := &entity.Property{
		HostID:        hostID,
		Title:         "Seaside flat",
		Description:   "Two rooms, balcony, five minutes from the beach",
		PricePerNight: 100,
		MaxGuests:     4,
		Status:        entity.PropertyStatusActive,
	}
	require.NoError(s.T(), s.propertyRepo.Create(ctx, property))

	require.NoError(s.T(), s.profileRepo.Upsert(ctx, &entity.Profile{
		UserID: hostID,
		Name:   "Test host",
	}))

	return property.ID
}

func (s *MarketplaceIntegrationTestSuite) seedBooking(propertyID primitive.ObjectID, hostID, guestID string, status entity.BookingStatus) primitive.ObjectID {
	ctx := context.Background()

	booking := &entity.Booking{
		PropertyID: propertyID,
		GuestID:    guestID,
		GuestEmail: guestID + "@example.com",
		HostID:     hostID,
		CheckIn:    time.Now().Add(-10 * 24 * time.Hour),
		CheckOut:   time.Now().Add(-7 * 24 * time.Hour),
		Guests:     entity.GuestCount{Adults: 2},
		TotalPrice: 300,
		Status:     status,
	}
	require.NoError(s.T(), s.bookingRepo.Create(ctx, booking))

	return booking.ID
}

func (s *MarketplaceIntegrationTestSuite) propertyRating(propertyID primitive.ObjectID) entity.PropertyRating {
	property, err := s.propertyRepo.GetByID(context.Background(), propertyID)
	require.NoError(s.T(), err)
	return property.Rating
}

func (s *MarketplaceIntegrationTestSuite) hostDetails(hostID string) entity.HostDetails {
	profile, err := s.profileRepo.GetByUserID(context.Background(), hostID)
	require.NoError(s.T(), err)
	return profile.HostDetails
}

// Создание отзыва фиксирует все четыре записи единицы работы:
// отзыв, флаг бронирования и оба агрегата.
func (s *MarketplaceIntegrationTestSuite) TestCreateReview_CommitsUnitOfWork() {
	ctx := context.Background()
	hostID := uuid.New().String()
	guestID := uuid.New().String()

	propertyID := s.seedProperty(hostID)
	bookingID := s.seedBooking(propertyID, hostID, guestID, entity.BookingStatusCompleted)

	review, err := s.reviewSvc.CreateReview(ctx, guestID, &entity.CreateReviewRequest{
		BookingID: bookingID.Hex(),
		Rating:    4,
		Comment:   "Great place, spotless and exactly as described",
	})
	s.Require().NoError(err)
	s.True(review.IsVerified)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	s.Require().NoError(err)
	s.True(booking.IsReviewed)

	rating := s.propertyRating(propertyID)
	s.InDelta(4.0, rating.Average, 0.001)
	s.Equal(int64(1), rating.Count)

	host := s.hostDetails(hostID)
	s.InDelta(4.0, host.AverageRating, 0.001)
	s.Equal(int64(1), host.TotalReviews)
}

// Второй отзыв по другому бронированию того же объекта даёт
// настоящее среднее, а не бегущую сумму: (4+2)/2 = 3.0.
func (s *MarketplaceIntegrationTestSuite) TestCreateReview_AveragesAcrossBookings() {
	ctx := context.Background()
	hostID := uuid.New().String()

	propertyID := s.seedProperty(hostID)

	ratings := []int{4, 2}
	for _, rating := range ratings {
		guestID := uuid.New().String()
		bookingID := s.seedBooking(propertyID, hostID, guestID, entity.BookingStatusCompleted)

		_, err := s.reviewSvc.CreateReview(ctx, guestID, &entity.CreateReviewRequest{
			BookingID: bookingID.Hex(),
			Rating:    rating,
			Comment:   "Detailed enough comment to pass validation",
		})
		s.Require().NoError(err)
	}

	rating := s.propertyRating(propertyID)
	s.InDelta(3.0, rating.Average, 0.001)
	s.Equal(int64(2), rating.Count)

	host := s.hostDetails(hostID)
	s.InDelta(3.0, host.AverageRating, 0.001)
	s.Equal(int64(2), host.TotalReviews)
}

// Гонка двух отзывов на одно бронирование: уникальный индекс по
// booking_id отклоняет второй, и вся его транзакция откатывается -
// агрегаты не задваиваются.
func (s *MarketplaceIntegrationTestSuite) TestCreateReview_DuplicateRollsBackAggregates() {
	ctx := context.Background()
	hostID := uuid.New().String()
	guestID := uuid.New().String()

	propertyID := s.seedProperty(hostID)
	bookingID := s.seedBooking(propertyID, hostID, guestID, entity.BookingStatusCompleted)

	_, err := s.reviewSvc.CreateReview(ctx, guestID, &entity.CreateReviewRequest{
		BookingID: bookingID.Hex(),
		Rating:    5,
		Comment:   "First review, should win the unique index race",
	})
	s.Require().NoError(err)

	// Сбрасываем флаг, имитируя второй запрос, прошедший быструю
	// проверку до коммита первого
	_, err = s.mongoDB.Collection("bookings").UpdateOne(ctx,
		bson.M{"_id": bookingID},
		bson.M{"$set": bson.M{"is_reviewed": false}},
	)
	s.Require().NoError(err)

	_, err = s.reviewSvc.CreateReview(ctx, guestID, &entity.CreateReviewRequest{
		BookingID: bookingID.Hex(),
		Rating:    1,
		Comment:   "Second review must lose to the unique index",
	})
	s.Require().ErrorIs(err, service.ErrReviewExists)

	reviews, err := s.reviewRepo.GetByPropertyID(ctx, propertyID)
	s.Require().NoError(err)
	s.Len(reviews, 1)
	s.Equal(5, reviews[0].Rating)

	rating := s.propertyRating(propertyID)
	s.InDelta(5.0, rating.Average, 0.001)
	s.Equal(int64(1), rating.Count)

	host := s.hostDetails(hostID)
	s.Equal(int64(1), host.TotalReviews)
}

// Отзыв разрешён только по завершённому бронированию и только его гостю.
func (s *MarketplaceIntegrationTestSuite) TestCreateReview_Preconditions() {
	ctx := context.Background()
	hostID := uuid.New().String()
	guestID := uuid.New().String()

	propertyID := s.seedProperty(hostID)
	confirmedID := s.seedBooking(propertyID, hostID, guestID, entity.BookingStatusConfirmed)
	completedID := s.seedBooking(propertyID, hostID, guestID, entity.BookingStatusCompleted)

	req := &entity.CreateReviewRequest{
		BookingID: confirmedID.Hex(),
		Rating:    4,
		Comment:   "Trying to review a stay that is not over yet",
	}
	_, err := s.reviewSvc.CreateReview(ctx, guestID, req)
	s.ErrorIs(err, service.ErrBookingNotCompleted)

	req.BookingID = completedID.Hex()
	_, err = s.reviewSvc.CreateReview(ctx, uuid.New().String(), req)
	s.ErrorIs(err, service.ErrUnauthorized)

	rating := s.propertyRating(propertyID)
	s.Equal(int64(0), rating.Count)
}

// Пересечение дат считается по полуоткрытым интервалам: день выезда
// одного бронирования может быть днём заезда следующего. Отменённые
// бронирования даты не держат.
func (s *MarketplaceIntegrationTestSuite) TestHasOverlapping_HalfOpenIntervals() {
	ctx := context.Background()
	hostID := uuid.New().String()
	propertyID := s.seedProperty(hostID)

	checkIn := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)

	booking := &entity.Booking{
		PropertyID: propertyID,
		GuestID:    uuid.New().String(),
		HostID:     hostID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     entity.GuestCount{Adults: 1},
		Status:     entity.BookingStatusConfirmed,
	}
	require.NoError(s.T(), s.bookingRepo.Create(ctx, booking))

	overlapping, err := s.bookingRepo.HasOverlapping(ctx, propertyID,
		checkIn.Add(2*24*time.Hour), checkOut.Add(2*24*time.Hour))
	s.Require().NoError(err)
	s.True(overlapping)

	adjacent, err := s.bookingRepo.HasOverlapping(ctx, propertyID,
		checkOut, checkOut.Add(3*24*time.Hour))
	s.Require().NoError(err)
	s.False(adjacent)

	require.NoError(s.T(), s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, &entity.Cancellation{
		CancelledAt: time.Now(),
		CancelledBy: booking.GuestID,
		Reason:      "change of plans",
	}))

	freed, err := s.bookingRepo.HasOverlapping(ctx, propertyID, checkIn, checkOut)
	s.Require().NoError(err)
	s.False(freed)
}

// MarkReviewed идемпотентен: повторный вызов не ошибка и не меняет флаг.
func (s *MarketplaceIntegrationTestSuite) TestMarkReviewed_Idempotent() {
	ctx := context.Background()
	hostID := uuid.New().String()
	propertyID := s.seedProperty(hostID)
	bookingID := s.seedBooking(propertyID, hostID, uuid.New().String(), entity.BookingStatusCompleted)

	s.Require().NoError(s.bookingRepo.MarkReviewed(ctx, bookingID))
	s.Require().NoError(s.bookingRepo.MarkReviewed(ctx, bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	s.Require().NoError(err)
	s.True(booking.IsReviewed)
}
