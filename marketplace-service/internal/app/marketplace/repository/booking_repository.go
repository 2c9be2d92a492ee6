package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
)

type bookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository создает новый репозиторий бронирований
func NewBookingRepository(db *mongo.Database) BookingRepository {
	collection := db.Collection("bookings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "guest_id", Value: 1}},
			Options: options.Index().SetName("guest_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "host_id", Value: 1}},
			Options: options.Index().SetName("host_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "check_in", Value: 1}},
			Options: options.Index().SetName("property_dates_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create booking indexes")
	}

	return &bookingRepository{collection: collection}
}

// Create создает новое бронирование в MongoDB
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "bookings")
	defer timer.ObserveDuration()

	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// GetByGuestID получает все бронирования гостя, новые первыми
func (r *bookingRepository) GetByGuestID(ctx context.Context, guestID string) ([]entity.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID}, 0, 0)
}

// GetByHostID получает все бронирования объектов хоста
func (r *bookingRepository) GetByHostID(ctx context.Context, hostID string) ([]entity.Booking, error) {
	return r.find(ctx, bson.M{"host_id": hostID}, 0, 0)
}

// List постранично отдает все бронирования (админ-обзор)
func (r *bookingRepository) List(ctx context.Context, limit, offset int64) ([]entity.Booking, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *bookingRepository) find(ctx context.Context, filter bson.M, limit, offset int64) ([]entity.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit).SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// HasOverlapping проверяет пересечение дат с живыми бронированиями объекта.
// Два интервала пересекаются, когда check_in < чужой check_out и наоборот.
func (r *bookingRepository) HasOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, "bookings")
	defer timer.ObserveDuration()

	filter := bson.M{
		"property_id": propertyID,
		"status":      bson.M{"$in": []entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusConfirmed}},
		"check_in":    bson.M{"$lt": checkOut},
		"check_out":   bson.M{"$gt": checkIn},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	return count > 0, nil
}

// UpdateStatus переводит бронирование в новый статус, опционально
// записывая метаданные отмены
func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.BookingStatus, cancellation *entity.Cancellation) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancellation != nil {
		set["cancellation"] = cancellation
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// MarkReviewed идемпотентно взводит флаг is_reviewed: повторный $set true
// ничего не меняет. Вызывается только из транзакции создания отзыва.
func (r *bookingRepository) MarkReviewed(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"is_reviewed": true,
			"updated_at":  time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark booking reviewed: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// DeleteByPropertyID удаляет бронирования объекта (каскад админ-удаления)
func (r *bookingRepository) DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"property_id": propertyID}); err != nil {
		return fmt.Errorf("failed to delete bookings by property: %w", err)
	}
	return nil
}

// DeleteByUserID удаляет бронирования, где пользователь был гостем или хостом
func (r *bookingRepository) DeleteByUserID(ctx context.Context, userID string) error {
	filter := bson.M{"$or": []bson.M{
		{"guest_id": userID},
		{"host_id": userID},
	}}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete bookings by user: %w", err)
	}
	return nil
}
