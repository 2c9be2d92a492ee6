package repository

import (
	"context"
	"fmt"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ratingRepository реализует RatingRepository поверх коллекций marketplace-service.
// Worker - единственный писатель во время пересчёта, поэтому обнуление
// и перезапись идут без транзакции: повторный запуск даёт тот же результат.
type ratingRepository struct {
	reviews    *mongo.Collection
	properties *mongo.Collection
	profiles   *mongo.Collection
}

// NewRatingRepository создает новый репозиторий пересчёта рейтингов
func NewRatingRepository(db *mongo.Database) RatingRepository {
	return &ratingRepository{
		reviews:    db.Collection("reviews"),
		properties: db.Collection("properties"),
		profiles:   db.Collection("profiles"),
	}
}

// AggregateByProperty группирует все отзывы по объекту
func (r *ratingRepository) AggregateByProperty(ctx context.Context) ([]entity.PropertyRatingAggregate, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, "reviews")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$property_id"},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews by property: %w", err)
	}
	defer cursor.Close(ctx)

	var aggregates []entity.PropertyRatingAggregate
	if err := cursor.All(ctx, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to decode property aggregates: %w", err)
	}

	return aggregates, nil
}

// AggregateByHost группирует все отзывы по хосту
func (r *ratingRepository) AggregateByHost(ctx context.Context) ([]entity.HostRatingAggregate, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, "reviews")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$host_id"},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews by host: %w", err)
	}
	defer cursor.Close(ctx)

	var aggregates []entity.HostRatingAggregate
	if err := cursor.All(ctx, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to decode host aggregates: %w", err)
	}

	return aggregates, nil
}

// ResetPropertyRatings обнуляет агрегат рейтинга у всех объектов
func (r *ratingRepository) ResetPropertyRatings(ctx context.Context) error {
	update := bson.M{"$set": bson.M{
		"rating.average": 0.0,
		"rating.count":   int64(0),
		"updated_at":     time.Now(),
	}}

	if _, err := r.properties.UpdateMany(ctx, bson.M{}, update); err != nil {
		return fmt.Errorf("failed to reset property ratings: %w", err)
	}

	return nil
}

// ResetHostRatings обнуляет агрегат рейтинга у всех профилей хостов
func (r *ratingRepository) ResetHostRatings(ctx context.Context) error {
	update := bson.M{"$set": bson.M{
		"host_details.average_rating": 0.0,
		"host_details.total_reviews":  int64(0),
		"updated_at":                  time.Now(),
	}}

	if _, err := r.profiles.UpdateMany(ctx, bson.M{}, update); err != nil {
		return fmt.Errorf("failed to reset host ratings: %w", err)
	}

	return nil
}

// SetPropertyRating перезаписывает агрегат одного объекта
func (r *ratingRepository) SetPropertyRating(ctx context.Context, propertyID primitive.ObjectID, average float64, count int64) error {
	update := bson.M{"$set": bson.M{
		"rating.average": average,
		"rating.count":   count,
		"updated_at":     time.Now(),
	}}

	result, err := r.properties.UpdateOne(ctx, bson.M{"_id": propertyID}, update)
	if err != nil {
		return fmt.Errorf("failed to set property rating: %w", err)
	}

	// Отзыв на удалённый объект - не повод валить весь пересчёт
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// SetHostRating перезаписывает агрегат одного профиля хоста
func (r *ratingRepository) SetHostRating(ctx context.Context, hostID string, average float64, count int64) error {
	update := bson.M{"$set": bson.M{
		"host_details.average_rating": average,
		"host_details.total_reviews":  count,
		"updated_at":                  time.Now(),
	}}

	result, err := r.profiles.UpdateOne(ctx, bson.M{"user_id": hostID}, update)
	if err != nil {
		return fmt.Errorf("failed to set host rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
