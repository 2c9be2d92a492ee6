package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile - маркетплейс-профиль пользователя из Auth Service.
// Агрегаты в HostDetails принадлежат транзакции создания отзыва
// и полному пересчёту в background worker; никто другой их не пишет.
type Profile struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string             `json:"user_id" bson:"user_id"` // UUID пользователя из Auth Service
	Name        string             `json:"name" bson:"name"`
	Bio         string             `json:"bio" bson:"bio"`
	AvatarURL   string             `json:"avatar_url" bson:"avatar_url"`
	HostDetails HostDetails        `json:"host_details" bson:"host_details"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HostDetails - денормализованный агрегат рейтинга хоста.
// AverageRating хранит настоящее среднее (не бегущую сумму): обновление
// делается read-modify-write внутри транзакции создания отзыва.
type HostDetails struct {
	AverageRating float64   `json:"average_rating" bson:"average_rating"`
	TotalReviews  int64     `json:"total_reviews" bson:"total_reviews"`
	Superhost     bool      `json:"superhost" bson:"superhost"`
	MemberSince   time.Time `json:"member_since" bson:"member_since"`
}

// PropertyStatus представляет статусы объявления
type PropertyStatus string

const (
	PropertyStatusActive    PropertyStatus = "active"
	PropertyStatusSuspended PropertyStatus = "suspended" // скрыто модератором
)

// GeoLocation - адрес и координаты объекта
type GeoLocation struct {
	Address string  `json:"address" bson:"address"`
	City    string  `json:"city" bson:"city"`
	Country string  `json:"country" bson:"country"`
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
}

// PropertyRating - денормализованный агрегат рейтинга объекта.
// average = настоящее среднее всех оценок, count = число отзывов.
type PropertyRating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

// Property представляет объект размещения
type Property struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HostID        string             `json:"host_id" bson:"host_id"` // UUID хоста из Auth Service
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Location      GeoLocation        `json:"location" bson:"location"`
	PricePerNight float64            `json:"price_per_night" bson:"price_per_night"`
	CleaningFee   float64            `json:"cleaning_fee" bson:"cleaning_fee"`
	MaxGuests     int                `json:"max_guests" bson:"max_guests"`
	Amenities     []string           `json:"amenities" bson:"amenities"`
	Photos        []string           `json:"photos" bson:"photos"`
	Status        PropertyStatus     `json:"status" bson:"status"`
	Rating        PropertyRating     `json:"rating" bson:"rating"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// BookingStatus представляет статусы бронирования
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // создано, ждёт подтверждения хоста
	BookingStatusConfirmed BookingStatus = "confirmed" // подтверждено хостом
	BookingStatusCancelled BookingStatus = "cancelled" // отменено гостем или хостом
	BookingStatusCompleted BookingStatus = "completed" // выезд состоялся
	BookingStatusExpired   BookingStatus = "expired"   // не подтверждено вовремя
)

// GuestCount - состав гостей бронирования
type GuestCount struct {
	Adults   int `json:"adults" bson:"adults"`
	Children int `json:"children" bson:"children"`
	Infants  int `json:"infants" bson:"infants"`
}

// Total возвращает число гостей, занимающих спальные места
func (g GuestCount) Total() int {
	return g.Adults + g.Children
}

// PriceBreakdown - разбивка стоимости бронирования.
// TotalPrice бронирования всегда пересчитывается из этой разбивки
// плюс дополнительные услуги.
type PriceBreakdown struct {
	Base        float64 `json:"base" bson:"base"`                 // ночи * цена за ночь
	CleaningFee float64 `json:"cleaning_fee" bson:"cleaning_fee"` // фиксированная плата объекта
	ServiceFee  float64 `json:"service_fee" bson:"service_fee"`   // комиссия платформы
	Taxes       float64 `json:"taxes" bson:"taxes"`
	Discount    float64 `json:"discount" bson:"discount"` // вычитается из суммы
}

// ExtraService - дополнительная услуга с отдельной ценой
type ExtraService struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

// PaymentStatus представляет статусы оплаты
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment - платёжная под-запись бронирования
type Payment struct {
	Method        string        `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// Cancellation - метаданные отмены бронирования
type Cancellation struct {
	CancelledAt time.Time `json:"cancelled_at" bson:"cancelled_at"`
	CancelledBy string    `json:"cancelled_by" bson:"cancelled_by"` // UUID инициатора
	Reason      string    `json:"reason" bson:"reason"`
}

// Booking представляет бронирование.
// Инвариант: CheckOut строго позже CheckIn. IsReviewed переходит в true
// ровно один раз - в транзакции создания отзыва.
type Booking struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PropertyID    primitive.ObjectID `json:"property_id" bson:"property_id"`
	GuestID       string             `json:"guest_id" bson:"guest_id"`
	GuestEmail    string             `json:"guest_email" bson:"guest_email"`
	HostID        string             `json:"host_id" bson:"host_id"`
	CheckIn       time.Time          `json:"check_in" bson:"check_in"`
	CheckOut      time.Time          `json:"check_out" bson:"check_out"`
	Guests        GuestCount         `json:"guests" bson:"guests"`
	Breakdown     PriceBreakdown     `json:"price_breakdown" bson:"price_breakdown"`
	ExtraServices []ExtraService     `json:"extra_services,omitempty" bson:"extra_services,omitempty"`
	TotalPrice    float64            `json:"total_price" bson:"total_price"`
	Status        BookingStatus      `json:"status" bson:"status"`
	Payment       Payment            `json:"payment" bson:"payment"`
	Cancellation  *Cancellation      `json:"cancellation,omitempty" bson:"cancellation,omitempty"`
	IsReviewed    bool               `json:"is_reviewed" bson:"is_reviewed"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Nights возвращает число ночей бронирования
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// CategoryRatings - опциональные оценки по категориям, каждая 1-5
type CategoryRatings struct {
	Cleanliness   int `json:"cleanliness" bson:"cleanliness" validate:"min=1,max=5"`
	Communication int `json:"communication" bson:"communication" validate:"min=1,max=5"`
	CheckIn       int `json:"check_in" bson:"check_in" validate:"min=1,max=5"`
	Accuracy      int `json:"accuracy" bson:"accuracy" validate:"min=1,max=5"`
	Location      int `json:"location" bson:"location" validate:"min=1,max=5"`
	Value         int `json:"value" bson:"value" validate:"min=1,max=5"`
}

// HostReply - ответ хоста на отзыв
type HostReply struct {
	Text      string    `json:"text" bson:"text"`
	RepliedAt time.Time `json:"replied_at" bson:"replied_at"`
}

// Review представляет отзыв гостя о проживании.
// На одно бронирование ровно один отзыв: уникальный индекс по booking_id
// отбрасывает проигравшего при гонке. property_id / guest_id / host_id
// денормализованы из бронирования при создании.
type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookingID  primitive.ObjectID `json:"booking_id" bson:"booking_id"`
	PropertyID primitive.ObjectID `json:"property_id" bson:"property_id"`
	GuestID    string             `json:"guest_id" bson:"guest_id"`
	HostID     string             `json:"host_id" bson:"host_id"`
	Rating     int                `json:"rating" bson:"rating"` // 1-5
	Comment    string             `json:"comment" bson:"comment"`
	Categories *CategoryRatings   `json:"categories,omitempty" bson:"categories,omitempty"`
	HostReply  *HostReply         `json:"host_reply,omitempty" bson:"host_reply,omitempty"`
	IsVerified bool               `json:"is_verified" bson:"is_verified"` // создан по завершённому бронированию
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// BookingEvent представляет событие бронирования для Kafka
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

// ReviewEvent представляет событие отзыва для Kafka
type ReviewEvent struct {
	EventType  string    `json:"event_type"` // REVIEW_CREATED
	ReviewID   string    `json:"review_id"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	HostID     string    `json:"host_id"`
	Rating     int       `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}
