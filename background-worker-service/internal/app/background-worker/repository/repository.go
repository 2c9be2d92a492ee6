package repository

import (
	"context"
	"errors"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound - запрошенной записи нет в хранилище
var ErrNotFound = errors.New("record not found")

// PaymentRepository интерфейс платёжного реестра в PostgreSQL
type PaymentRepository interface {
	// Create добавляет строку реестра. Повторное событие по той же брони
	// молча игнорируется, created сообщает, была ли строка вставлена.
	Create(ctx context.Context, record *entity.PaymentRecord) (created bool, err error)

	// GetByBookingID получает строку реестра по ID брони
	GetByBookingID(ctx context.Context, bookingID string) (*entity.PaymentRecord, error)

	// UpdateStatus обновляет статус строки реестра
	UpdateStatus(ctx context.Context, bookingID string, status entity.BookingStatus) error
}

// RatingRepository интерфейс полного пересчёта рейтингов в MongoDB.
// Читает коллекцию reviews, перезаписывает агрегаты properties и profiles.
type RatingRepository interface {
	// AggregateByProperty группирует все отзывы по объекту
	AggregateByProperty(ctx context.Context) ([]entity.PropertyRatingAggregate, error)

	// AggregateByHost группирует все отзывы по хосту
	AggregateByHost(ctx context.Context) ([]entity.HostRatingAggregate, error)

	// ResetPropertyRatings обнуляет агрегат рейтинга у всех объектов
	ResetPropertyRatings(ctx context.Context) error

	// ResetHostRatings обнуляет агрегат рейтинга у всех профилей хостов
	ResetHostRatings(ctx context.Context) error

	// SetPropertyRating перезаписывает агрегат одного объекта
	SetPropertyRating(ctx context.Context, propertyID primitive.ObjectID, average float64, count int64) error

	// SetHostRating перезаписывает агрегат одного профиля хоста
	SetHostRating(ctx context.Context, hostID string, average float64, count int64) error
}

// BookingSweepRepository интерфейс массовых переходов статусов броней в MongoDB
type BookingSweepRepository interface {
	// CompleteFinishedStays переводит confirmed брони с прошедшим check_out в completed
	CompleteFinishedStays(ctx context.Context, now time.Time) (int64, error)

	// ExpireStalePending переводит pending брони, созданные до cutoff, в expired
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunStatusRepository интерфейс хранения статуса последнего запуска задач в Redis
type RunStatusRepository interface {
	// Save сохраняет итог запуска задачи с TTL
	Save(ctx context.Context, run *entity.MaintenanceRun) error

	// Get получает итог последнего запуска задачи
	Get(ctx context.Context, job string) (*entity.MaintenanceRun, error)
}
