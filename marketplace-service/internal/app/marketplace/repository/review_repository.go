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
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewExists - уникальный индекс по booking_id отклонил вторую
	// вставку для того же бронирования
	ErrReviewExists = errors.New("review already exists for this booking")
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов.
// Уникальный индекс по booking_id обеспечивает "один отзыв на бронирование"
// на уровне хранилища: при гонке за одно бронирование проигравший получает
// duplicate key error.
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetName("booking_id_unique_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "property_id", Value: 1}},
			Options: options.Index().SetName("property_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "guest_id", Value: 1}},
			Options: options.Index().SetName("guest_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "host_id", Value: 1}},
			Options: options.Index().SetName("host_id_idx"),
		},
	}

	// Индекс может уже существовать - не прерываем старт
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create review indexes")
	}

	return &reviewRepository{collection: collection}
}

// Create вставляет новый отзыв. Дубликат по booking_id превращается
// в ErrReviewExists, а не перезаписывает существующий отзыв.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer timer.ObserveDuration()

	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrReviewExists
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var review entity.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetByPropertyID получает все отзывы объекта, новые первыми
func (r *reviewRepository) GetByPropertyID(ctx context.Context, propertyID primitive.ObjectID) ([]entity.Review, error) {
	return r.find(ctx, bson.M{"property_id": propertyID})
}

// GetByGuestID получает все отзывы, оставленные гостем
func (r *reviewRepository) GetByGuestID(ctx context.Context, guestID string) ([]entity.Review, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *reviewRepository) find(ctx context.Context, filter bson.M) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, "reviews")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// Update сохраняет правку оценки/комментария.
// Агрегаты объекта и хоста здесь сознательно не трогаются.
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"categories": review.Categories,
			"updated_at": review.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// SetHostReply прикрепляет ответ хоста к отзыву
func (r *reviewRepository) SetHostReply(ctx context.Context, id primitive.ObjectID, reply *entity.HostReply) error {
	update := bson.M{
		"$set": bson.M{
			"host_reply": reply,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set host reply: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв. Агрегаты не пересчитываются - дрейф устраняет
// полный пересчёт в background worker.
func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// DeleteByPropertyID удаляет все отзывы объекта (каскад админ-удаления)
func (r *reviewRepository) DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"property_id": propertyID}); err != nil {
		return fmt.Errorf("failed to delete reviews by property: %w", err)
	}
	return nil
}

// DeleteByUserID удаляет отзывы, где пользователь был гостем или хостом
func (r *reviewRepository) DeleteByUserID(ctx context.Context, userID string) error {
	filter := bson.M{"$or": []bson.M{
		{"guest_id": userID},
		{"host_id": userID},
	}}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete reviews by user: %w", err)
	}
	return nil
}
