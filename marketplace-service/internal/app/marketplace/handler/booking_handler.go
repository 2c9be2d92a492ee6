package handler

import (
	"context"
	"errors"
	"net/http"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, guestID, guestEmail string, req *entity.CreateBookingRequest) (*entity.Booking, error)
	GetBooking(ctx context.Context, id string, userID string) (*entity.Booking, error)
	GetGuestBookings(ctx context.Context, guestID string) ([]entity.Booking, error)
	GetHostBookings(ctx context.Context, hostID string) ([]entity.Booking, error)
	ConfirmBooking(ctx context.Context, id string, hostID string) (*entity.Booking, error)
	CancelBooking(ctx context.Context, id string, userID string, req *entity.CancelBookingRequest) (*entity.Booking, error)
}

type BookingHandler struct {
	bookingService BookingServiceInterface
	validator      *validator.Validate
}

func NewBookingHandler(bookingService BookingServiceInterface) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator.New(),
	}
}

// CreateBooking создает бронирование от имени текущего гостя
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), guestID, c.GetString("email"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPropertyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		case errors.Is(err, service.ErrInvalidDates):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Check-out date must be after check-in date"})
		case errors.Is(err, service.ErrTooManyGuests):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Guest count exceeds property capacity"})
		case errors.Is(err, service.ErrPropertySuspended):
			c.JSON(http.StatusConflict, gin.H{"error": "Property is not available"})
		case errors.Is(err, service.ErrDatesUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Selected dates are not available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking возвращает бронирование его гостю или хосту
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("booking_id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetMyBookings возвращает бронирования текущего гостя
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetGuestBookings(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bookings"})
		return
	}

	c.JSON(http.StatusOK, entity.BookingListResponse{
		Bookings: bookings,
		Total:    len(bookings),
	})
}

// GetHostBookings возвращает бронирования объектов текущего хоста
func (h *BookingHandler) GetHostBookings(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetHostBookings(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bookings"})
		return
	}

	c.JSON(http.StatusOK, entity.BookingListResponse{
		Bookings: bookings,
		Total:    len(bookings),
	})
}

// ConfirmBooking подтверждает бронирование хостом
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), c.Param("booking_id"), hostID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrInvalidBookingState):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking cannot be confirmed in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking отменяет бронирование гостем или хостом
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("booking_id"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrInvalidBookingState):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking cannot be cancelled in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}
