package entity

import "time"

// UpdateProfileRequest - запрос на обновление собственного профиля
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio       string `json:"bio" validate:"omitempty,max=1000"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// CreatePropertyRequest - запрос на создание объявления
type CreatePropertyRequest struct {
	Title         string   `json:"title" validate:"required,min=5,max=200"`
	Description   string   `json:"description" validate:"required,min=20,max=5000"`
	Address       string   `json:"address" validate:"required"`
	City          string   `json:"city" validate:"required"`
	Country       string   `json:"country" validate:"required"`
	Lat           float64  `json:"lat" validate:"min=-90,max=90"`
	Lng           float64  `json:"lng" validate:"min=-180,max=180"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gt=0"`
	CleaningFee   float64  `json:"cleaning_fee" validate:"gte=0"`
	MaxGuests     int      `json:"max_guests" validate:"required,min=1,max=50"`
	Amenities     []string `json:"amenities"`
}

// UpdatePropertyRequest - частичное обновление объявления
type UpdatePropertyRequest struct {
	Title         string   `json:"title" validate:"omitempty,min=5,max=200"`
	Description   string   `json:"description" validate:"omitempty,min=20,max=5000"`
	PricePerNight float64  `json:"price_per_night" validate:"omitempty,gt=0"`
	CleaningFee   float64  `json:"cleaning_fee" validate:"omitempty,gte=0"`
	MaxGuests     int      `json:"max_guests" validate:"omitempty,min=1,max=50"`
	Amenities     []string `json:"amenities"`
}

// PropertySearchQuery - параметры публичного поиска объявлений
type PropertySearchQuery struct {
	City      string  `form:"city"`
	Country   string  `form:"country"`
	Guests    int     `form:"guests"`
	MaxPrice  float64 `form:"max_price"`
	MinRating float64 `form:"min_rating"`
}

// ExtraServiceRequest - дополнительная услуга в запросе бронирования
type ExtraServiceRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Price float64 `json:"price" validate:"gte=0"`
}

// CreateBookingRequest - запрос на бронирование
type CreateBookingRequest struct {
	PropertyID    string                `json:"property_id" validate:"required"`
	CheckIn       time.Time             `json:"check_in" validate:"required"`
	CheckOut      time.Time             `json:"check_out" validate:"required"`
	Adults        int                   `json:"adults" validate:"required,min=1"`
	Children      int                   `json:"children" validate:"gte=0"`
	Infants       int                   `json:"infants" validate:"gte=0"`
	PaymentMethod string                `json:"payment_method" validate:"required,oneof=card paypal"`
	ExtraServices []ExtraServiceRequest `json:"extra_services" validate:"omitempty,dive"`
}

// CancelBookingRequest - запрос на отмену бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// CreateReviewRequest - запрос на создание отзыва:
// bookingID + оценка + текст + опциональные оценки по категориям
type CreateReviewRequest struct {
	BookingID  string           `json:"booking_id" validate:"required"`
	Rating     int              `json:"rating" validate:"required,min=1,max=5"`
	Comment    string           `json:"comment" validate:"required,min=10,max=2000"`
	Categories *CategoryRatings `json:"categories,omitempty"`
}

// UpdateReviewRequest - правка отзыва автором.
// Агрегаты при правке НЕ пересчитываются - их чинит полный пересчёт.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,min=10,max=2000"`
}

// HostReplyRequest - ответ хоста на отзыв
type HostReplyRequest struct {
	Text string `json:"text" validate:"required,min=5,max=2000"`
}

// SuspendPropertyRequest - причина блокировки объявления модератором
type SuspendPropertyRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PropertyListResponse - ответ со списком объявлений
type PropertyListResponse struct {
	Properties []Property `json:"properties"`
	Total      int        `json:"total"`
}

// BookingListResponse - ответ со списком бронирований
type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
	Total    int       `json:"total"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

// HostProfileResponse - публичный профиль хоста: агрегаты рейтинга
// читаются как обычные числовые поля, отдельного ratings-endpoint нет
type HostProfileResponse struct {
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Bio         string      `json:"bio"`
	AvatarURL   string      `json:"avatar_url"`
	HostDetails HostDetails `json:"host_details"`
	Properties  []Property  `json:"properties"`
}
