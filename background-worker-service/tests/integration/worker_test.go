//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/background-worker-service/internal/app/background-worker/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// WorkerIntegrationTestSuite - интеграционные тесты фоновых задач.
// Требует запущенные MongoDB, PostgreSQL и Redis (docker-compose.test.yml).
type WorkerIntegrationTestSuite struct {
	suite.Suite
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	db          *gorm.DB
	redisClient *redis.Client

	ratingSvc    *service.RatingMaintenanceService
	lifecycleSvc *service.BookingLifecycleService
	paymentRepo  repository.PaymentRepository
}

func TestWorkerIntegrationSuite(t *testing.T) {
	suite.Run(t, new(WorkerIntegrationTestSuite))
}

func (s *WorkerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017/?replicaSet=rs0"))
	require.NoError(s.T(), err, "Failed to connect to MongoDB")
	require.NoError(s.T(), mongoClient.Ping(ctx, nil))
	s.mongoClient = mongoClient
	s.mongoDB = mongoClient.Database("marketplace_service_test")

	dsn := "host=localhost port=5432 user=postgres password=postgres dbname=payments_service_test sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")
	require.NoError(s.T(), db.AutoMigrate(&entity.PaymentRecord{}))
	s.db = db

	s.redisClient = redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   14, // отдельная БД для тестов worker
	})
	require.NoError(s.T(), s.redisClient.Ping(ctx).Err())

	runRepo := repository.NewRunStatusRepository(s.redisClient, time.Hour)
	s.ratingSvc = service.NewRatingMaintenanceService(repository.NewRatingRepository(s.mongoDB), runRepo)
	s.lifecycleSvc = service.NewBookingLifecycleService(repository.NewBookingSweepRepository(s.mongoDB), 24*time.Hour)
	s.paymentRepo = repository.NewPaymentRepository(s.db)
}

func (s *WorkerIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	s.mongoDB.Drop(ctx)
	s.mongoClient.Disconnect(ctx)
	s.db.Exec("DROP TABLE IF EXISTS payment_ledger")
	s.redisClient.FlushDB(ctx)
	s.redisClient.Close()
}

func (s *WorkerIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	for _, name := range []string{"reviews", "properties", "profiles", "bookings"} {
		_, err := s.mongoDB.Collection(name).DeleteMany(ctx, bson.M{})
		require.NoError(s.T(), err)
	}
	s.db.Exec("TRUNCATE payment_ledger")
	s.redisClient.FlushDB(ctx)
}

func (s *WorkerIntegrationTestSuite) seedProperty(hostID string) primitive.ObjectID {
	ctx := context.Background()
	propertyID := primitive.NewObjectID()

	_, err := s.mongoDB.Collection("properties").InsertOne(ctx, bson.M{
		"_id":     propertyID,
		"host_id": hostID,
		"title":   "Test property",
		"status":  "active",
		"rating":  bson.M{"average": 0.0, "count": int64(0)},
	})
	require.NoError(s.T(), err)

	_, err = s.mongoDB.Collection("profiles").UpdateOne(ctx,
		bson.M{"user_id": hostID},
		bson.M{"$setOnInsert": bson.M{
			"user_id": hostID,
			"name":    "Test host",
			"host_details": bson.M{
				"average_rating": 0.0,
				"total_reviews":  int64(0),
			},
		}},
		options.Update().SetUpsert(true),
	)
	require.NoError(s.T(), err)

	return propertyID
}

func (s *WorkerIntegrationTestSuite) seedReview(propertyID primitive.ObjectID, hostID string, rating int) {
	_, err := s.mongoDB.Collection("reviews").InsertOne(context.Background(), bson.M{
		"_id":         primitive.NewObjectID(),
		"booking_id":  primitive.NewObjectID(),
		"property_id": propertyID,
		"guest_id":    fmt.Sprintf("guest-%d", time.Now().UnixNano()),
		"host_id":     hostID,
		"rating":      rating,
		"created_at":  time.Now(),
	})
	require.NoError(s.T(), err)
}

func (s *WorkerIntegrationTestSuite) propertyRating(propertyID primitive.ObjectID) (float64, int64) {
	var doc struct {
		Rating struct {
			Average float64 `bson:"average"`
			Count   int64   `bson:"count"`
		} `bson:"rating"`
	}
	err := s.mongoDB.Collection("properties").
		FindOne(context.Background(), bson.M{"_id": propertyID}).Decode(&doc)
	require.NoError(s.T(), err)
	return doc.Rating.Average, doc.Rating.Count
}

// Последовательность оценок 4, 2, 5 даёт средние 4.0, 3.0, ≈3.67
func (s *WorkerIntegrationTestSuite) TestRecompute_TrueMean() {
	ctx := context.Background()
	propertyID := s.seedProperty("host-mean")

	expectations := []struct {
		rating  int
		average float64
		count   int64
	}{
		{4, 4.0, 1},
		{2, 3.0, 2},
		{5, 11.0 / 3.0, 3},
	}

	for _, step := range expectations {
		s.seedReview(propertyID, "host-mean", step.rating)

		_, err := s.ratingSvc.RecomputeRatings(ctx)
		require.NoError(s.T(), err)

		average, count := s.propertyRating(propertyID)
		s.InDelta(step.average, average, 0.001)
		s.Equal(step.count, count)
	}
}

func (s *WorkerIntegrationTestSuite) TestRecompute_Idempotent() {
	ctx := context.Background()
	propertyID := s.seedProperty("host-idem")
	s.seedReview(propertyID, "host-idem", 4)
	s.seedReview(propertyID, "host-idem", 5)

	_, err := s.ratingSvc.RecomputeRatings(ctx)
	require.NoError(s.T(), err)
	firstAvg, firstCount := s.propertyRating(propertyID)

	_, err = s.ratingSvc.RecomputeRatings(ctx)
	require.NoError(s.T(), err)
	secondAvg, secondCount := s.propertyRating(propertyID)

	s.Equal(firstAvg, secondAvg)
	s.Equal(firstCount, secondCount)
	s.InDelta(4.5, secondAvg, 0.001)
}

// Пересчёт чинит агрегат, испорченный прямой записью в документ
func (s *WorkerIntegrationTestSuite) TestRecompute_RepairsCorruptedAggregate() {
	ctx := context.Background()
	propertyID := s.seedProperty("host-repair")
	s.seedReview(propertyID, "host-repair", 3)
	s.seedReview(propertyID, "host-repair", 5)

	_, err := s.mongoDB.Collection("properties").UpdateOne(ctx,
		bson.M{"_id": propertyID},
		bson.M{"$set": bson.M{"rating.average": 1.2, "rating.count": int64(99)}},
	)
	require.NoError(s.T(), err)

	_, err = s.ratingSvc.RecomputeRatings(ctx)
	require.NoError(s.T(), err)

	average, count := s.propertyRating(propertyID)
	s.InDelta(4.0, average, 0.001)
	s.Equal(int64(2), count)
}

func (s *WorkerIntegrationTestSuite) TestRecompute_UpdatesHostAggregates() {
	ctx := context.Background()
	propA := s.seedProperty("host-agg")
	propB := s.seedProperty("host-agg")
	s.seedReview(propA, "host-agg", 5)
	s.seedReview(propB, "host-agg", 2)

	_, err := s.ratingSvc.RecomputeRatings(ctx)
	require.NoError(s.T(), err)

	var profile struct {
		HostDetails struct {
			AverageRating float64 `bson:"average_rating"`
			TotalReviews  int64   `bson:"total_reviews"`
		} `bson:"host_details"`
	}
	err = s.mongoDB.Collection("profiles").
		FindOne(ctx, bson.M{"user_id": "host-agg"}).Decode(&profile)
	require.NoError(s.T(), err)

	s.InDelta(3.5, profile.HostDetails.AverageRating, 0.001)
	s.Equal(int64(2), profile.HostDetails.TotalReviews)
}

func (s *WorkerIntegrationTestSuite) TestRecompute_SavesRunStatus() {
	ctx := context.Background()

	_, err := s.ratingSvc.RecomputeRatings(ctx)
	require.NoError(s.T(), err)

	runRepo := repository.NewRunStatusRepository(s.redisClient, time.Hour)
	run, err := runRepo.Get(ctx, entity.JobRatingRecompute)
	require.NoError(s.T(), err)
	s.Equal(entity.RunStatusSuccess, run.Status)
}

func (s *WorkerIntegrationTestSuite) TestSweep_TransitionsBookings() {
	ctx := context.Background()
	now := time.Now()

	bookings := []bson.M{
		{
			"_id":        primitive.NewObjectID(),
			"status":     "confirmed",
			"check_out":  now.AddDate(0, 0, -2),
			"created_at": now.AddDate(0, 0, -10),
		},
		{
			"_id":        primitive.NewObjectID(),
			"status":     "confirmed",
			"check_out":  now.AddDate(0, 0, 3),
			"created_at": now.AddDate(0, 0, -1),
		},
		{
			"_id":        primitive.NewObjectID(),
			"status":     "pending",
			"check_out":  now.AddDate(0, 0, 10),
			"created_at": now.Add(-48 * time.Hour),
		},
		{
			"_id":        primitive.NewObjectID(),
			"status":     "pending",
			"check_out":  now.AddDate(0, 0, 10),
			"created_at": now.Add(-time.Hour),
		},
	}
	for _, b := range bookings {
		_, err := s.mongoDB.Collection("bookings").InsertOne(ctx, b)
		require.NoError(s.T(), err)
	}

	result, err := s.lifecycleSvc.SweepBookings(ctx)
	require.NoError(s.T(), err)

	s.Equal(int64(1), result.Completed)
	s.Equal(int64(1), result.Expired)

	count := func(status string) int64 {
		n, err := s.mongoDB.Collection("bookings").CountDocuments(ctx, bson.M{"status": status})
		require.NoError(s.T(), err)
		return n
	}
	s.Equal(int64(1), count("completed"))
	s.Equal(int64(1), count("expired"))
	s.Equal(int64(1), count("confirmed"))
	s.Equal(int64(1), count("pending"))
}

func (s *WorkerIntegrationTestSuite) TestPaymentLedger_DuplicateBookingIgnored() {
	ctx := context.Background()

	record := &entity.PaymentRecord{
		ID:         uuid.New(),
		BookingID:  "booking-int-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		HostID:     "host-1",
		Amount:     150,
		Status:     entity.BookingStatusPending,
		CheckIn:    time.Now().AddDate(0, 0, 5),
		CheckOut:   time.Now().AddDate(0, 0, 8),
	}

	created, err := s.paymentRepo.Create(ctx, record)
	require.NoError(s.T(), err)
	s.True(created)

	duplicate := *record
	duplicate.ID = uuid.New()
	created, err = s.paymentRepo.Create(ctx, &duplicate)
	require.NoError(s.T(), err)
	s.False(created)

	err = s.paymentRepo.UpdateStatus(ctx, "booking-int-1", entity.BookingStatusConfirmed)
	require.NoError(s.T(), err)

	stored, err := s.paymentRepo.GetByBookingID(ctx, "booking-int-1")
	require.NoError(s.T(), err)
	s.Equal(entity.BookingStatusConfirmed, stored.Status)
}
