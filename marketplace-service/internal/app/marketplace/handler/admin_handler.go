package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AdminServiceInterface interface {
	ListBookings(ctx context.Context, limit, offset int64) ([]entity.Booking, error)
	SuspendProperty(ctx context.Context, id string, adminID string, reason string) error
	DeleteProperty(ctx context.Context, id string) error
	DeleteReview(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID string) error
}

type AdminHandler struct {
	adminService AdminServiceInterface
	validator    *validator.Validate
}

func NewAdminHandler(adminService AdminServiceInterface) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validator:    validator.New(),
	}
}

// ListBookings возвращает страницу всех бронирований платформы
func (h *AdminHandler) ListBookings(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	if err != nil || offset < 0 {
		offset = 0
	}

	bookings, err := h.adminService.ListBookings(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, entity.BookingListResponse{
		Bookings: bookings,
		Total:    len(bookings),
	})
}

// SuspendProperty скрывает объявление из публичного доступа
func (h *AdminHandler) SuspendProperty(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.SuspendPropertyRequest
	// Тело с причиной опционально
	_ = c.ShouldBindJSON(&req)

	if err := h.adminService.SuspendProperty(c.Request.Context(), c.Param("property_id"), adminID, req.Reason); err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suspend property"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Property suspended successfully",
	})
}

// DeleteProperty удаляет объявление вместе с его бронированиями и отзывами
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	if err := h.adminService.DeleteProperty(c.Request.Context(), c.Param("property_id")); err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Property deleted successfully",
	})
}

// DeleteReview удаляет отзыв по решению модератора
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	if err := h.adminService.DeleteReview(c.Request.Context(), c.Param("review_id")); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}

// DeleteUser удаляет профиль пользователя со всеми связанными данными
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user data"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "User data deleted successfully",
	})
}
