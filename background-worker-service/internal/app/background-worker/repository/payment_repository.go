package repository

import (
	"context"
	"errors"
	"fmt"

	"staynest/background-worker-service/internal/app/background-worker/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository реализует PaymentRepository для работы с PostgreSQL через GORM
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository создает новый репозиторий платёжного реестра
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create добавляет строку реестра. Уникальный индекс по booking_id
// вместе с ON CONFLICT DO NOTHING делает вставку идемпотентной:
// Kafka доставляет как минимум один раз, повторы неизбежны.
func (r *paymentRepository) Create(ctx context.Context, record *entity.PaymentRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).
		Create(record)

	if result.Error != nil {
		return false, fmt.Errorf("failed to create payment record: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetByBookingID получает строку реестра по ID брони
func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*entity.PaymentRecord, error) {
	var record entity.PaymentRecord

	result := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&record)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment record: %w", result.Error)
	}

	return &record, nil
}

// UpdateStatus обновляет статус строки реестра
func (r *paymentRepository) UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error {
	result := r.db.WithContext(ctx).
		Model(&entity.PaymentRecord{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]interface{}{
			"status": status,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment record status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
