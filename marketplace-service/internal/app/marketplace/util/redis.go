package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const propertyCacheKeyPrefix = "property:"

// RedisClient обертка над go-redis для кеширования карточек объектов
// Карточка объекта читается на каждый просмотр страницы, кеш снимает нагрузку с MongoDB
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func propertyCacheKey(propertyID string) string {
	return propertyCacheKeyPrefix + propertyID
}

// SetProperty кладет карточку объекта в кеш с TTL
func (r *RedisClient) SetProperty(ctx context.Context, property *entity.Property, ttl time.Duration) error {
	data, err := json.Marshal(property)
	if err != nil {
		return fmt.Errorf("failed to marshal property: %w", err)
	}

	if err := r.client.Set(ctx, propertyCacheKey(property.ID.Hex()), data, ttl).Err(); err != nil {
		metrics.RecordRedisError("marketplace-service", "set")
		return fmt.Errorf("failed to set property in cache: %w", err)
	}

	return nil
}

// GetProperty возвращает карточку объекта из кеша
// Возвращает (nil, nil) при промахе кеша
func (r *RedisClient) GetProperty(ctx context.Context, propertyID string) (*entity.Property, error) {
	data, err := r.client.Get(ctx, propertyCacheKey(propertyID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss("marketplace-service", "property")
			return nil, nil
		}
		metrics.RecordRedisError("marketplace-service", "get")
		return nil, fmt.Errorf("failed to get property from cache: %w", err)
	}

	var property entity.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property: %w", err)
	}

	metrics.RecordCacheHit("marketplace-service", "property")
	return &property, nil
}

// DeleteProperty инвалидирует кеш объекта.
// Вызывается при правках через property service; изменения агрегата
// рейтинга (транзакция отзыва, полный пересчет) кеш не трогают -
// их устаревание ограничено TTL
func (r *RedisClient) DeleteProperty(ctx context.Context, propertyID string) error {
	if err := r.client.Del(ctx, propertyCacheKey(propertyID)).Err(); err != nil {
		metrics.RecordRedisError("marketplace-service", "del")
		return fmt.Errorf("failed to delete property from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
