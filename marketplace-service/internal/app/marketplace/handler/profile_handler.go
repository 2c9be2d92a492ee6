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

type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *entity.UpdateProfileRequest) (*entity.Profile, error)
	GetHostProfile(ctx context.Context, hostID string) (*entity.HostProfileResponse, error)
}

type ProfileHandler struct {
	profileService ProfileServiceInterface
	validator      *validator.Validate
}

func NewProfileHandler(profileService ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		validator:      validator.New(),
	}
}

// GetMyProfile возвращает собственный профиль текущего пользователя
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile обновляет собственный профиль текущего пользователя
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetHostProfile возвращает публичный профиль хоста с его объявлениями
func (h *ProfileHandler) GetHostProfile(c *gin.Context) {
	hostID := c.Param("host_id")
	if hostID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Host ID is required"})
		return
	}

	profile, err := h.profileService.GetHostProfile(c.Request.Context(), hostID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Host not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get host profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
