package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/infrastructure"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Комиссия платформы и налог считаются от базовой стоимости ночей
	serviceFeeRate = 0.12
	taxRate        = 0.05
	// Скидка за длительное проживание: от 7 ночей
	weeklyDiscountRate   = 0.10
	weeklyDiscountNights = 7
)

// BookingService обрабатывает бизнес-логику бронирований
// Координирует MongoDB и публикацию событий в Kafka
type BookingService struct {
	bookingRepo   repository.BookingRepository
	propertyRepo  repository.PropertyRepository
	kafkaProducer infrastructure.MessagePublisher
}

// NewBookingService создает новый сервис бронирований с внедрением зависимостей
func NewBookingService(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	kafkaProducer infrastructure.MessagePublisher,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		propertyRepo:  propertyRepo,
		kafkaProducer: kafkaProducer,
	}
}

// ComputeBreakdown рассчитывает разбивку стоимости бронирования.
// base = ночи * цена за ночь, комиссия и налоги от базы,
// скидка за проживание от недели
func ComputeBreakdown(property *entity.Property, nights int) entity.PriceBreakdown {
	base := float64(nights) * property.PricePerNight

	var discount float64
	if nights >= weeklyDiscountNights {
		discount = roundMoney(base * weeklyDiscountRate)
	}

	return entity.PriceBreakdown{
		Base:        roundMoney(base),
		CleaningFee: property.CleaningFee,
		ServiceFee:  roundMoney(base * serviceFeeRate),
		Taxes:       roundMoney(base * taxRate),
		Discount:    discount,
	}
}

// TotalPrice пересчитывает итоговую сумму из разбивки и дополнительных услуг
func TotalPrice(breakdown entity.PriceBreakdown, extras []entity.ExtraService) float64 {
	total := breakdown.Base + breakdown.CleaningFee + breakdown.ServiceFee + breakdown.Taxes - breakdown.Discount
	for _, extra := range extras {
		total += extra.Price
	}
	return roundMoney(total)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateBooking создает новое бронирование
// 1. Проверяет даты, вместимость и доступность объекта
// 2. Рассчитывает разбивку стоимости и итоговую сумму
// 3. Сохраняет бронирование в статусе pending
// 4. Отправляет событие BOOKING_CREATED в Kafka
func (s *BookingService) CreateBooking(ctx context.Context, guestID, guestEmail string, req *entity.CreateBookingRequest) (*entity.Booking, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrInvalidDates
	}

	propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return nil, ErrPropertyNotFound
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.Status == entity.PropertyStatusSuspended {
		return nil, ErrPropertySuspended
	}

	guests := entity.GuestCount{
		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
	}
	if guests.Total() > property.MaxGuests {
		return nil, ErrTooManyGuests
	}

	// Пересечение с активными бронированиями по полуинтервалу [check_in, check_out)
	overlaps, err := s.bookingRepo.HasOverlapping(ctx, propertyID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlaps {
		return nil, ErrDatesUnavailable
	}

	extras := make([]entity.ExtraService, 0, len(req.ExtraServices))
	for _, extra := range req.ExtraServices {
		extras = append(extras, entity.ExtraService{Name: extra.Name, Price: extra.Price})
	}

	booking := &entity.Booking{
		PropertyID:    propertyID,
		GuestID:       guestID,
		GuestEmail:    guestEmail,
		HostID:        property.HostID,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Guests:        guests,
		ExtraServices: extras,
		Status:        entity.BookingStatusPending,
		Payment: entity.Payment{
			Method: req.PaymentMethod,
			Status: entity.PaymentStatusPending,
		},
	}
	booking.Breakdown = ComputeBreakdown(property, booking.Nights())
	booking.TotalPrice = TotalPrice(booking.Breakdown, extras)

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingsCreated.Inc()

	s.publishBookingEvent(ctx, "BOOKING_CREATED", booking)

	return booking, nil
}

// GetBooking получает бронирование, доступное только его гостю или хосту
func (s *BookingService) GetBooking(ctx context.Context, id string, userID string) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != userID && booking.HostID != userID {
		return nil, ErrUnauthorized
	}

	return booking, nil
}

// GetGuestBookings получает все бронирования гостя
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID string) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.GetByGuestID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest bookings: %w", err)
	}

	return bookings, nil
}

// GetHostBookings получает все бронирования по объектам хоста
func (s *BookingService) GetHostBookings(ctx context.Context, hostID string) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.GetByHostID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get host bookings: %w", err)
	}

	return bookings, nil
}

// ConfirmBooking подтверждает бронирование хостом объекта.
// Подтверждается только pending бронирование
func (s *BookingService) ConfirmBooking(ctx context.Context, id string, hostID string) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.HostID != hostID {
		return nil, ErrUnauthorized
	}
	if booking.Status != entity.BookingStatusPending {
		return nil, ErrInvalidBookingState
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed, nil); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	booking.Status = entity.BookingStatusConfirmed

	metrics.BookingStatusChanges.WithLabelValues(string(entity.BookingStatusConfirmed)).Inc()

	s.publishBookingEvent(ctx, "BOOKING_STATUS_CHANGED", booking)

	return booking, nil
}

// CancelBooking отменяет бронирование гостем или хостом.
// Отменяются только pending и confirmed бронирования
func (s *BookingService) CancelBooking(ctx context.Context, id string, userID string, req *entity.CancelBookingRequest) (*entity.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != userID && booking.HostID != userID {
		return nil, ErrUnauthorized
	}
	if booking.Status != entity.BookingStatusPending && booking.Status != entity.BookingStatusConfirmed {
		return nil, ErrInvalidBookingState
	}

	cancellation := &entity.Cancellation{
		CancelledAt: time.Now(),
		CancelledBy: userID,
		Reason:      req.Reason,
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, cancellation); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	booking.Status = entity.BookingStatusCancelled
	booking.Cancellation = cancellation

	metrics.BookingStatusChanges.WithLabelValues(string(entity.BookingStatusCancelled)).Inc()

	s.publishBookingEvent(ctx, "BOOKING_STATUS_CHANGED", booking)

	return booking, nil
}

func (s *BookingService) getBooking(ctx context.Context, id string) (*entity.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.bookingRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// publishBookingEvent отправляет событие бронирования в Kafka.
// Проблемы с Kafka не прерывают основной сценарий
func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, booking *entity.Booking) {
	event := entity.BookingEvent{
		EventType:  eventType,
		BookingID:  booking.ID.Hex(),
		PropertyID: booking.PropertyID.Hex(),
		GuestID:    booking.GuestID,
		GuestEmail: booking.GuestEmail,
		HostID:     booking.HostID,
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Timestamp:  time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to marshal booking event")
		return
	}

	// Ключ = BookingID для сохранения порядка событий одного бронирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.BookingID, eventData); err != nil {
		logger.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to publish booking event")
	}
}
