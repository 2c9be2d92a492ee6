package repository

import (
	"context"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// serviceName - метка сервиса в метриках запросов к хранилищу
const serviceName = "marketplace-service"

// TxnRunner выполняет функцию внутри MongoDB-транзакции.
// Репозиторные методы, вызванные с переданным в fn контекстом,
// попадают в одну атомарную единицу работы.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProfileRepository определяет методы для работы с профилями в MongoDB
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *entity.Profile) error
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	// ApplyHostRating вмешивает новую оценку в агрегат хоста
	// взвешенной формулой по счётчику ДО инкремента
	ApplyHostRating(ctx context.Context, hostID string, rating int) error
	Delete(ctx context.Context, userID string) error
}

// PropertyRepository определяет методы для работы с объявлениями в MongoDB
type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error)
	Search(ctx context.Context, query *entity.PropertySearchQuery) ([]entity.Property, error)
	GetByHostID(ctx context.Context, hostID string) ([]entity.Property, error)
	Update(ctx context.Context, property *entity.Property) error
	AddPhoto(ctx context.Context, id primitive.ObjectID, url string) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status entity.PropertyStatus) error
	// ApplyRating вмешивает новую оценку в агрегат объекта
	ApplyRating(ctx context.Context, id primitive.ObjectID, rating int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByHostID(ctx context.Context, hostID string) error
}

// BookingRepository определяет методы для работы с бронированиями в MongoDB
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error)
	GetByGuestID(ctx context.Context, guestID string) ([]entity.Booking, error)
	GetByHostID(ctx context.Context, hostID string) ([]entity.Booking, error)
	List(ctx context.Context, limit, offset int64) ([]entity.Booking, error)
	HasOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.BookingStatus, cancellation *entity.Cancellation) error
	// MarkReviewed идемпотентно взводит флаг is_reviewed
	MarkReviewed(ctx context.Context, id primitive.ObjectID) error
	DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	GetByPropertyID(ctx context.Context, propertyID primitive.ObjectID) ([]entity.Review, error)
	GetByGuestID(ctx context.Context, guestID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	SetHostReply(ctx context.Context, id primitive.ObjectID, reply *entity.HostReply) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPropertyID(ctx context.Context, propertyID primitive.ObjectID) error
	DeleteByUserID(ctx context.Context, userID string) error
}
