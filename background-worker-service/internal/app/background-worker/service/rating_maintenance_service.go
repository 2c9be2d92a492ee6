package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"
)

// RatingMaintenanceService пересчитывает агрегаты рейтингов с нуля.
// Инкрементальные обновления в marketplace-service со временем накапливают
// расхождения (правки и удаления отзывов агрегаты не трогают) - полный
// пересчёт приводит агрегаты к истинному среднему по всем отзывам.
type RatingMaintenanceService struct {
	ratingRepo repository.RatingRepository
	runRepo    repository.RunStatusRepository
}

// NewRatingMaintenanceService создает новый сервис пересчёта рейтингов
func NewRatingMaintenanceService(
	ratingRepo repository.RatingRepository,
	runRepo repository.RunStatusRepository,
) *RatingMaintenanceService {
	return &RatingMaintenanceService{
		ratingRepo: ratingRepo,
		runRepo:    runRepo,
	}
}

// RecomputeRatings пересчитывает агрегаты всех объектов и хостов.
// Порядок строгий: сначала агрегация отзывов, затем обнуление всех
// агрегатов, затем перезапись сгруппированных результатов. Объекты и
// хосты без отзывов остаются в нуле. Запуск идемпотентен: повторный
// проход по тем же отзывам даёт те же агрегаты.
func (s *RatingMaintenanceService) RecomputeRatings(ctx context.Context) (*entity.MaintenanceRun, error) {
	run := &entity.MaintenanceRun{
		Job:       entity.JobRatingRecompute,
		StartedAt: time.Now(),
	}

	err := s.recompute(ctx, run)

	run.FinishedAt = time.Now()
	metrics.RatingRecomputeDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err != nil {
		run.Status = entity.RunStatusFailure
		run.Error = err.Error()
		metrics.RatingRecomputeRuns.WithLabelValues("failure").Inc()
	} else {
		run.Status = entity.RunStatusSuccess
		metrics.RatingRecomputeRuns.WithLabelValues("success").Inc()
	}

	// Статус запуска - диагностика, его потеря не отменяет сам пересчёт
	if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
		logger.Error().Err(saveErr).Msg("Failed to save rating recompute run status")
	}

	if err != nil {
		return run, err
	}

	logger.Info().
		Int64("properties", run.Properties).
		Int64("hosts", run.Hosts).
		Dur("duration", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Rating recompute completed")

	return run, nil
}

func (s *RatingMaintenanceService) recompute(ctx context.Context, run *entity.MaintenanceRun) error {
	propertyAggregates, err := s.ratingRepo.AggregateByProperty(ctx)
	if err != nil {
		return fmt.Errorf("property aggregation failed: %w", err)
	}

	hostAggregates, err := s.ratingRepo.AggregateByHost(ctx)
	if err != nil {
		return fmt.Errorf("host aggregation failed: %w", err)
	}

	if err := s.ratingRepo.ResetPropertyRatings(ctx); err != nil {
		return fmt.Errorf("property reset failed: %w", err)
	}

	if err := s.ratingRepo.ResetHostRatings(ctx); err != nil {
		return fmt.Errorf("host reset failed: %w", err)
	}

	for _, agg := range propertyAggregates {
		if err := s.ratingRepo.SetPropertyRating(ctx, agg.PropertyID, agg.Average, agg.Count); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Объект удалён, его отзывы осиротели
				logger.Warn().
					Str("property_id", agg.PropertyID.Hex()).
					Msg("Skipping rating for missing property")
				continue
			}
			return fmt.Errorf("property overwrite failed: %w", err)
		}
		run.Properties++
	}

	for _, agg := range hostAggregates {
		if err := s.ratingRepo.SetHostRating(ctx, agg.HostID, agg.Average, agg.Count); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn().
					Str("host_id", agg.HostID).
					Msg("Skipping rating for missing host profile")
				continue
			}
			return fmt.Errorf("host overwrite failed: %w", err)
		}
		run.Hosts++
	}

	return nil
}
