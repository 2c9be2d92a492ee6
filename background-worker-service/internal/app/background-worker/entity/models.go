package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentRecord представляет строку платёжного реестра.
// Создаётся по событию BOOKING_CREATED, обновляется по смене статуса брони.
type PaymentRecord struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID  string        `json:"booking_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	PropertyID string        `json:"property_id" gorm:"type:varchar(64);not null"`
	GuestID    string        `json:"guest_id" gorm:"type:varchar(64);not null"`
	HostID     string        `json:"host_id" gorm:"type:varchar(64);not null"`
	Amount     float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status     BookingStatus `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	CheckIn    time.Time     `json:"check_in" gorm:"not null"`
	CheckOut   time.Time     `json:"check_out" gorm:"not null"`
	CreatedAt  time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PaymentRecord) TableName() string {
	return "payment_ledger"
}

// BookingStatus дублирует статусы брони marketplace-service:
// реестр хранит статус в том же словаре, что и исходное событие.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusExpired   BookingStatus = "expired"
)

// BookingEvent - событие бронирования из Kafka топика booking_events
type BookingEvent struct {
	EventType  string        `json:"event_type"` // BOOKING_CREATED, BOOKING_STATUS_CHANGED
	BookingID  string        `json:"booking_id"`
	PropertyID string        `json:"property_id"`
	GuestID    string        `json:"guest_id"`
	GuestEmail string        `json:"guest_email"`
	HostID     string        `json:"host_id"`
	Status     BookingStatus `json:"status"`
	TotalPrice float64       `json:"total_price"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Timestamp  time.Time     `json:"timestamp"`
}

const (
	EventTypeBookingCreated       = "BOOKING_CREATED"
	EventTypeBookingStatusChanged = "BOOKING_STATUS_CHANGED"
)

// PropertyRatingAggregate - результат $group отзывов по объекту
type PropertyRatingAggregate struct {
	PropertyID primitive.ObjectID `bson:"_id"`
	Average    float64            `bson:"average"`
	Count      int64              `bson:"count"`
}

// HostRatingAggregate - результат $group отзывов по хосту
type HostRatingAggregate struct {
	HostID  string  `bson:"_id"`
	Average float64 `bson:"average"`
	Count   int64   `bson:"count"`
}

// MaintenanceRun - итог одного запуска фоновой задачи.
// Последний запуск каждой задачи хранится в Redis.
type MaintenanceRun struct {
	Job        string    `json:"job"`
	Status     string    `json:"status"` // success, failure
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Properties int64     `json:"properties"` // объектов перезаписано
	Hosts      int64     `json:"hosts"`      // профилей хостов перезаписано
	Error      string    `json:"error,omitempty"`
}

const (
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

const (
	JobRatingRecompute = "rating_recompute"
	JobBookingSweep    = "booking_sweep"
)

// SweepResult - итог одного прохода по жизненному циклу броней
type SweepResult struct {
	Completed int64 `json:"completed"` // confirmed с прошедшим check_out
	Expired   int64 `json:"expired"`   // pending старше порога
}

const (
	RedisKeyPrefixRun = "worker:run:" // worker:run:rating_recompute
)

func GetRedisKeyForRun(job string) string {
	return RedisKeyPrefixRun + job
}
