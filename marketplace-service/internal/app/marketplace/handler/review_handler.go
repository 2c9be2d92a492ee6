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

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, guestID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReview(ctx context.Context, id string) (*entity.Review, error)
	GetPropertyReviews(ctx context.Context, propertyID string) ([]entity.Review, error)
	GetGuestReviews(ctx context.Context, guestID string) ([]entity.Review, error)
	UpdateReview(ctx context.Context, id string, guestID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	ReplyToReview(ctx context.Context, id string, hostID string, req *entity.HostReplyRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, id string, guestID string) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview создает отзыв по завершенному бронированию.
// Повторный отзыв на то же бронирование возвращает 409
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), guestID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the booking guest can leave a review"})
		case errors.Is(err, service.ErrBookingNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is not completed yet"})
		case errors.Is(err, service.ErrReviewExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Review already exists for this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetPropertyReviews возвращает все отзывы по объекту
func (h *ReviewHandler) GetPropertyReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetPropertyReviews(c.Request.Context(), c.Param("property_id"))
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// GetMyReviews возвращает отзывы, написанные текущим гостем
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetGuestReviews(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// UpdateReview правит отзыв его автором
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("review_id"), guestID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// ReplyToReview добавляет ответ хоста на отзыв
func (h *ReviewHandler) ReplyToReview(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.HostReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.ReplyToReview(c.Request.Context(), c.Param("review_id"), hostID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reply to review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview удаляет отзыв его автором
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	guestID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("review_id"), guestID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}
