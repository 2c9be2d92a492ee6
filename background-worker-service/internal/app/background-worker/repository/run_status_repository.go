package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const serviceName = "background-worker-service"

// runStatusRepository реализует RunStatusRepository для работы с Redis.
// Хранится только последний запуск каждой задачи, запись живёт TTL.
type runStatusRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunStatusRepository создает новый репозиторий статусов запусков
func NewRunStatusRepository(client *redis.Client, ttl time.Duration) RunStatusRepository {
	return &runStatusRepository{
		client: client,
		ttl:    ttl,
	}
}

// Save сохраняет итог запуска задачи с TTL
func (r *runStatusRepository) Save(ctx context.Context, run *entity.MaintenanceRun) error {
	key := entity.GetRedisKeyForRun(run.Job)

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run status: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to set run status in redis: %w", err)
	}

	return nil
}

// Get получает итог последнего запуска задачи
func (r *runStatusRepository) Get(ctx context.Context, job string) (*entity.MaintenanceRun, error) {
	key := entity.GetRedisKeyForRun(job)

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		metrics.RecordRedisError(serviceName, "get")
		return nil, fmt.Errorf("failed to get run status from redis: %w", err)
	}

	var run entity.MaintenanceRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run status: %w", err)
	}

	return &run, nil
}
