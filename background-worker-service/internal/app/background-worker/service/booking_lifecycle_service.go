package service

import (
	"context"
	"fmt"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"
)

// BookingLifecycleService закрывает брони, которые не требуют действий
// пользователей: прожитые confirmed становятся completed (и открывают
// окно для отзыва), зависшие pending - expired.
type BookingLifecycleService struct {
	bookingRepo repository.BookingSweepRepository
	pendingTTL  time.Duration
}

// NewBookingLifecycleService создает новый сервис жизненного цикла броней
func NewBookingLifecycleService(bookingRepo repository.BookingSweepRepository, pendingTTL time.Duration) *BookingLifecycleService {
	return &BookingLifecycleService{
		bookingRepo: bookingRepo,
		pendingTTL:  pendingTTL,
	}
}

// SweepBookings завершает прожитые брони и гасит зависшие pending
func (s *BookingLifecycleService) SweepBookings(ctx context.Context) (*entity.SweepResult, error) {
	now := time.Now()
	result := &entity.SweepResult{}

	completed, err := s.bookingRepo.CompleteFinishedStays(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete finished stays: %w", err)
	}
	result.Completed = completed

	expired, err := s.bookingRepo.ExpireStalePending(ctx, now.Add(-s.pendingTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to expire stale pending bookings: %w", err)
	}
	result.Expired = expired

	metrics.BookingStatusChanges.WithLabelValues("completed").Add(float64(completed))
	metrics.BookingStatusChanges.WithLabelValues("expired").Add(float64(expired))

	if completed > 0 || expired > 0 {
		logger.Info().
			Int64("completed", completed).
			Int64("expired", expired).
			Msg("Booking sweep transitioned bookings")
	}

	return result, nil
}
