package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type PropertyServiceInterface interface {
	CreateProperty(ctx context.Context, hostID string, req *entity.CreatePropertyRequest) (*entity.Property, error)
	GetProperty(ctx context.Context, id string) (*entity.Property, error)
	SearchProperties(ctx context.Context, query *entity.PropertySearchQuery) ([]entity.Property, error)
	GetHostProperties(ctx context.Context, hostID string) ([]entity.Property, error)
	UpdateProperty(ctx context.Context, id string, hostID string, req *entity.UpdatePropertyRequest) (*entity.Property, error)
	UploadPhoto(ctx context.Context, id string, hostID string, file multipart.File, filename string) (string, error)
	DeleteProperty(ctx context.Context, id string, hostID string) error
}

type PropertyHandler struct {
	propertyService PropertyServiceInterface
	validator       *validator.Validate
}

func NewPropertyHandler(propertyService PropertyServiceInterface) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		validator:       validator.New(),
	}
}

// CreateProperty создает объявление от имени текущего хоста
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), hostID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetProperty возвращает публичную карточку объекта
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	propertyID := c.Param("property_id")

	property, err := h.propertyService.GetProperty(c.Request.Context(), propertyID)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// SearchProperties выполняет публичный поиск активных объявлений
func (h *PropertyHandler) SearchProperties(c *gin.Context) {
	var query entity.PropertySearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search parameters"})
		return
	}

	properties, err := h.propertyService.SearchProperties(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}

	c.JSON(http.StatusOK, entity.PropertyListResponse{
		Properties: properties,
		Total:      len(properties),
	})
}

// GetMyProperties возвращает все объявления текущего хоста
func (h *PropertyHandler) GetMyProperties(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	properties, err := h.propertyService.GetHostProperties(c.Request.Context(), hostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, entity.PropertyListResponse{
		Properties: properties,
		Total:      len(properties),
	})
}

// UpdateProperty обновляет объявление текущего хоста
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	propertyID := c.Param("property_id")

	var req entity.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), propertyID, hostID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// UploadPhoto загружает фотографию объекта в CDN
func (h *PropertyHandler) UploadPhoto(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	propertyID := c.Param("property_id")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo file"})
		return
	}
	defer file.Close()

	url, err := h.propertyService.UploadPhoto(c.Request.Context(), propertyID, hostID, file, uuid.NewString())
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DeleteProperty удаляет объявление текущего хоста
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	hostID, ok := currentUserID(c)
	if !ok {
		return
	}

	propertyID := c.Param("property_id")

	if err := h.propertyService.DeleteProperty(c.Request.Context(), propertyID, hostID); err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Property deleted successfully",
	})
}
