package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// bookingSweepRepository реализует BookingSweepRepository поверх коллекции
// bookings marketplace-service. Оба перехода - массовый UpdateMany с фильтром
// по статусу, повторный проход не находит уже переведённые брони.
type bookingSweepRepository struct {
	collection *mongo.Collection
}

// NewBookingSweepRepository создает новый репозиторий переходов статусов броней
func NewBookingSweepRepository(db *mongo.Database) BookingSweepRepository {
	return &bookingSweepRepository{collection: db.Collection("bookings")}
}

// CompleteFinishedStays переводит confirmed брони с прошедшим check_out в completed
func (r *bookingSweepRepository) CompleteFinishedStays(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":    "confirmed",
		"check_out": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     "completed",
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to complete finished stays: %w", err)
	}

	return result.ModifiedCount, nil
}

// ExpireStalePending переводит pending брони, созданные до cutoff, в expired
func (r *bookingSweepRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":     "pending",
		"created_at": bson.M{"$lt": cutoff},
	}
	update := bson.M{"$set": bson.M{
		"status":     "expired",
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale pending bookings: %w", err)
	}

	return result.ModifiedCount, nil
}
