package processor

import (
	"context"

	"staynest/background-worker-service/internal/app/background-worker/service"
	"staynest/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодические задачи: полный пересчёт рейтингов
// и проход по жизненному циклу броней
type CronScheduler struct {
	cron         *cron.Cron
	ratingSvc    service.RatingMaintenanceServiceInterface
	lifecycleSvc service.BookingLifecycleServiceInterface
}

// NewCronScheduler создает новый планировщик
func NewCronScheduler(
	ratingSvc service.RatingMaintenanceServiceInterface,
	lifecycleSvc service.BookingLifecycleServiceInterface,
) *CronScheduler {
	return &CronScheduler{
		cron:         cron.New(),
		ratingSvc:    ratingSvc,
		lifecycleSvc: lifecycleSvc,
	}
}

// Start регистрирует задачи и запускает планировщик.
// Пересчёт рейтингов дополнительно выполняется сразу при старте,
// чтобы не ждать ночного запуска после простоя сервиса.
func (s *CronScheduler) Start(ctx context.Context, recomputeSchedule, sweepSchedule string) error {
	logger.Info().
		Str("rating_recompute", recomputeSchedule).
		Str("booking_sweep", sweepSchedule).
		Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(recomputeSchedule, func() {
		s.runRecompute(ctx)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(sweepSchedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().Msg("Performing initial rating recompute")
	s.runRecompute(ctx)

	return nil
}

// Stop останавливает планировщик, дожидаясь текущих задач
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

// GetEntries возвращает зарегистрированные задачи
func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronScheduler) runRecompute(ctx context.Context) {
	if _, err := s.ratingSvc.RecomputeRatings(ctx); err != nil {
		logger.Error().Err(err).Msg("Rating recompute failed")
	}
}

func (s *CronScheduler) runSweep(ctx context.Context) {
	if _, err := s.lifecycleSvc.SweepBookings(ctx); err != nil {
		logger.Error().Err(err).Msg("Booking sweep failed")
	}
}
