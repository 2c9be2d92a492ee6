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
	ErrPropertyNotFound = errors.New("property not found")
)

type propertyRepository struct {
	collection *mongo.Collection
}

// NewPropertyRepository создает новый репозиторий объявлений
func NewPropertyRepository(db *mongo.Database) PropertyRepository {
	collection := db.Collection("properties")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "host_id", Value: 1}},
			Options: options.Index().SetName("host_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "location.city", Value: 1}, {Key: "location.country", Value: 1}},
			Options: options.Index().SetName("location_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("Failed to create property indexes")
	}

	return &propertyRepository{collection: collection}
}

// Create создает новое объявление с нулевым агрегатом рейтинга
func (r *propertyRepository) Create(ctx context.Context, property *entity.Property) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "properties")
	defer timer.ObserveDuration()

	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt
	property.Status = entity.PropertyStatusActive
	property.Rating = entity.PropertyRating{}

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid
	}

	return nil
}

// GetByID получает объявление по ID
func (r *propertyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, "properties")
	defer timer.ObserveDuration()

	var property entity.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPropertyNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &property, nil
}

// Search выполняет публичный поиск по активным объявлениям
func (r *propertyRepository) Search(ctx context.Context, query *entity.PropertySearchQuery) ([]entity.Property, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, "properties")
	defer timer.ObserveDuration()

	filter := bson.M{"status": entity.PropertyStatusActive}

	if query.City != "" {
		filter["location.city"] = query.City
	}
	if query.Country != "" {
		filter["location.country"] = query.Country
	}
	if query.Guests > 0 {
		filter["max_guests"] = bson.M{"$gte": query.Guests}
	}
	if query.MaxPrice > 0 {
		filter["price_per_night"] = bson.M{"$lte": query.MaxPrice}
	}
	if query.MinRating > 0 {
		filter["rating.average"] = bson.M{"$gte": query.MinRating}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rating.average", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []entity.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, nil
}

// GetByHostID получает все объявления хоста, включая заблокированные
func (r *propertyRepository) GetByHostID(ctx context.Context, hostID string) ([]entity.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"host_id": hostID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find host properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []entity.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, nil
}

// Update сохраняет правки описательных полей объявления.
// Поле rating сознательно не входит в $set: агрегат пишут только
// транзакция отзыва (ApplyRating) и полный пересчёт.
func (r *propertyRepository) Update(ctx context.Context, property *entity.Property) error {
	property.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"title":           property.Title,
			"description":     property.Description,
			"price_per_night": property.PricePerNight,
			"cleaning_fee":    property.CleaningFee,
			"max_guests":      property.MaxGuests,
			"amenities":       property.Amenities,
			"updated_at":      property.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": property.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// AddPhoto дописывает URL загруженной фотографии
func (r *propertyRepository) AddPhoto(ctx context.Context, id primitive.ObjectID, url string) error {
	update := bson.M{
		"$push": bson.M{"photos": url},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add photo: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// SetStatus переключает статус объявления (модерация)
func (r *propertyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status entity.PropertyStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set property status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// ApplyRating инкрементально вмешивает новую оценку в агрегат объекта.
// Среднее пересчитывается взвешенной формулой по счётчику ДО инкремента,
// затем одним UpdateOne пишется новое среднее и $inc счётчика. Вызывается
// только внутри транзакции создания отзыва.
func (r *propertyRepository) ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "properties")
	defer timer.ObserveDuration()

	var current struct {
		Rating entity.PropertyRating `bson:"rating"`
	}

	opts := options.FindOne().SetProjection(bson.M{"rating": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to read property rating: %w", err)
	}

	newAverage := entity.NextAverage(current.Rating.Average, current.Rating.Count, rating)

	update := bson.M{
		"$set": bson.M{
			"rating.average": newAverage,
			"updated_at":     time.Now(),
		},
		"$inc": bson.M{"rating.count": 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to apply property rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// Delete удаляет объявление
func (r *propertyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// DeleteByHostID удаляет все объявления хоста (каскад удаления пользователя)
func (r *propertyRepository) DeleteByHostID(ctx context.Context, hostID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"host_id": hostID}); err != nil {
		return fmt.Errorf("failed to delete properties by host: %w", err)
	}
	return nil
}
