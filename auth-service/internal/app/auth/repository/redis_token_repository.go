package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/auth-service/internal/app/auth/entity"
	"staynest/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenKeyPrefix = "auth:refresh:"
	userTokensKeyPrefix   = "auth:user_tokens:"
	blacklistKeyPrefix    = "auth:blacklist:"

	serviceName = "auth-service"
)

// redisTokenRepository - хранилище токенов в Redis.
// Истечение обеспечивается TTL ключей, отдельная чистка не нужна.
type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает репозиторий токенов поверх Redis
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

func (r *redisTokenRepository) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired")
	}

	key := refreshTokenKeyPrefix + token
	if err := r.client.Set(ctx, key, userID.String(), ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	// Множество токенов пользователя нужно для отзыва всех сессий при logout
	userTokensKey := userTokensKeyPrefix + userID.String()
	if err := r.client.SAdd(ctx, userTokensKey, token).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "sadd")
		return fmt.Errorf("failed to track user token: %w", err)
	}
	r.client.Expire(ctx, userTokensKey, ttl)

	return nil
}

func (r *redisTokenRepository) GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	key := refreshTokenKeyPrefix + token

	userIDStr, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, "get")
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, "ttl")
		return nil, fmt.Errorf("failed to get refresh token ttl: %w", err)
	}

	return &entity.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (r *redisTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	key := refreshTokenKeyPrefix + token

	userIDStr, err := r.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		metrics.RecordRedisError(serviceName, "get")
		return fmt.Errorf("failed to resolve token owner: %w", err)
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if userIDStr != "" {
		r.client.SRem(ctx, userTokensKeyPrefix+userIDStr, token)
	}

	return nil
}

func (r *redisTokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	userTokensKey := userTokensKeyPrefix + userID.String()

	tokens, err := r.client.SMembers(ctx, userTokensKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, "smembers")
		return fmt.Errorf("failed to list user tokens: %w", err)
	}

	for _, token := range tokens {
		r.client.Del(ctx, refreshTokenKeyPrefix+token)
	}

	if err := r.client.Del(ctx, userTokensKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to delete user tokens set: %w", err)
	}

	return nil
}

func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Токен уже истек, черный список не нужен
		return nil
	}

	if err := r.client.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	exists, err := r.client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, "exists")
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return exists > 0, nil
}

// CleanupExpiredTokens - no-op, Redis удаляет ключи по TTL сам
func (r *redisTokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	return nil
}
