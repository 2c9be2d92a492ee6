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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type profileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository создает новый репозиторий профилей.
// Уникальный индекс по user_id: один профиль на пользователя Auth Service.
func NewProfileRepository(db *mongo.Database) ProfileRepository {
	collection := db.Collection("profiles")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("user_id_unique_idx").SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create profile index")
	}

	return &profileRepository{collection: collection}
}

// Upsert создает профиль при первом обращении или обновляет описательные
// поля существующего. Агрегаты host_details не входят в $set - их пишут
// только ApplyHostRating и полный пересчёт.
func (r *profileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":       profile.Name,
			"bio":        profile.Bio,
			"avatar_url": profile.AvatarURL,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":                     profile.UserID,
			"host_details.average_rating": float64(0),
			"host_details.total_reviews":  int64(0),
			"host_details.superhost":      false,
			"host_details.member_since":   now,
			"created_at":                  now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"user_id": profile.UserID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// GetByUserID получает профиль по UUID пользователя из Auth Service
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, "profiles")
	defer timer.ObserveDuration()

	var profile entity.Profile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// ApplyHostRating инкрементально вмешивает оценку в агрегат хоста.
// average_rating хранит настоящее среднее: читаем текущее значение,
// применяем взвешенную формулу по счётчику ДО инкремента и пишем
// новое среднее вместе с $inc счётчика. Вызывается только внутри
// транзакции создания отзыва.
func (r *profileRepository) ApplyHostRating(ctx context.Context, hostID string, rating int) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "profiles")
	defer timer.ObserveDuration()

	var current struct {
		HostDetails entity.HostDetails `bson:"host_details"`
	}

	opts := options.FindOne().SetProjection(bson.M{"host_details": 1})
	if err := r.collection.FindOne(ctx, bson.M{"user_id": hostID}, opts).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to read host rating: %w", err)
	}

	newAverage := entity.NextAverage(current.HostDetails.AverageRating, current.HostDetails.TotalReviews, rating)

	update := bson.M{
		"$set": bson.M{
			"host_details.average_rating": newAverage,
			"updated_at":                  time.Now(),
		},
		"$inc": bson.M{"host_details.total_reviews": 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": hostID}, update)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to apply host rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// Delete удаляет профиль пользователя
func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProfileNotFound
	}

	return nil
}
