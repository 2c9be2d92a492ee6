package service

import (
	"context"

	"staynest/background-worker-service/internal/app/background-worker/entity"
)

// RatingMaintenanceServiceInterface определяет интерфейс полного пересчёта рейтингов
type RatingMaintenanceServiceInterface interface {
	// RecomputeRatings пересчитывает агрегаты всех объектов и хостов с нуля
	RecomputeRatings(ctx context.Context) (*entity.MaintenanceRun, error)
}

// BookingLifecycleServiceInterface определяет интерфейс прохода по жизненному циклу броней
type BookingLifecycleServiceInterface interface {
	// SweepBookings завершает прожитые брони и гасит зависшие pending
	SweepBookings(ctx context.Context) (*entity.SweepResult, error)
}

// PaymentProcessingServiceInterface определяет интерфейс обработки событий бронирований
type PaymentProcessingServiceInterface interface {
	// ProcessBookingEvent обрабатывает событие бронирования из Kafka
	ProcessBookingEvent(ctx context.Context, event *entity.BookingEvent) error
}

// MailSender определяет интерфейс отправки уведомлений
type MailSender interface {
	// SendBookingConfirmation отправляет гостю письмо-подтверждение брони
	SendBookingConfirmation(ctx context.Context, event *entity.BookingEvent) error
}
