package service

import (
	"context"
	"errors"
	"fmt"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"

	"github.com/google/uuid"
)

// PaymentProcessingService ведёт платёжный реестр по событиям бронирований
// и шлёт гостям письма-подтверждения
type PaymentProcessingService struct {
	paymentRepo repository.PaymentRepository
	mailer      MailSender
}

// NewPaymentProcessingService создает новый сервис обработки событий бронирований
func NewPaymentProcessingService(paymentRepo repository.PaymentRepository, mailer MailSender) *PaymentProcessingService {
	return &PaymentProcessingService{
		paymentRepo: paymentRepo,
		mailer:      mailer,
	}
}

// ProcessBookingEvent обрабатывает событие бронирования из Kafka
func (s *PaymentProcessingService) ProcessBookingEvent(ctx context.Context, event *entity.BookingEvent) error {
	switch event.EventType {
	case entity.EventTypeBookingCreated:
		return s.handleBookingCreated(ctx, event)
	case entity.EventTypeBookingStatusChanged:
		return s.handleStatusChanged(ctx, event)
	default:
		// Незнакомый тип события не повод блокировать партицию
		logger.Warn().
			Str("event_type", event.EventType).
			Str("booking_id", event.BookingID).
			Msg("Skipping unknown booking event type")
		return nil
	}
}

// handleBookingCreated добавляет строку реестра и шлёт письмо гостю.
// Письмо не критично: его сбой логируется и считается в метрике,
// но offset коммитится - повторная доставка продублировала бы запись.
func (s *PaymentProcessingService) handleBookingCreated(ctx context.Context, event *entity.BookingEvent) error {
	record := &entity.PaymentRecord{
		ID:         uuid.New(),
		BookingID:  event.BookingID,
		PropertyID: event.PropertyID,
		GuestID:    event.GuestID,
		HostID:     event.HostID,
		Amount:     event.TotalPrice,
		Status:     event.Status,
		CheckIn:    event.CheckIn,
		CheckOut:   event.CheckOut,
	}

	created, err := s.paymentRepo.Create(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to record payment for booking %s: %w", event.BookingID, err)
	}

	if !created {
		// Повторная доставка события - запись уже есть, письмо уже уходило
		logger.Debug().
			Str("booking_id", event.BookingID).
			Msg("Payment record already exists, skipping duplicate event")
		return nil
	}

	if err := s.mailer.SendBookingConfirmation(ctx, event); err != nil {
		metrics.NotificationEmailsSent.WithLabelValues("booking_confirmation", "failure").Inc()
		logger.Error().
			Err(err).
			Str("booking_id", event.BookingID).
			Msg("Failed to send booking confirmation email")
		return nil
	}

	metrics.NotificationEmailsSent.WithLabelValues("booking_confirmation", "success").Inc()
	return nil
}

// handleStatusChanged переносит новый статус брони в строку реестра
func (s *PaymentProcessingService) handleStatusChanged(ctx context.Context, event *entity.BookingEvent) error {
	err := s.paymentRepo.UpdateStatus(ctx, event.BookingID, event.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Consumer мог подключиться позже BOOKING_CREATED этой брони
			logger.Warn().
				Str("booking_id", event.BookingID).
				Str("status", string(event.Status)).
				Msg("Status change for unknown booking, ledger row missing")
			return nil
		}
		return fmt.Errorf("failed to update payment status for booking %s: %w", event.BookingID, err)
	}

	return nil
}
