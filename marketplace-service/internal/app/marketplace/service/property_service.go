package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/marketplace-service/internal/app/marketplace/util"
	"staynest/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TTL кеша карточки объекта: рейтинг меняется транзакцией отзыва,
// короткий TTL ограничивает окно устаревших данных после пересчета
const propertyCacheTTL = 5 * time.Minute

// PropertyService обрабатывает бизнес-логику объявлений
// Координирует MongoDB, Redis кеш и Cloudinary
type PropertyService struct {
	propertyRepo repository.PropertyRepository
	cache        util.PropertyCache
	uploader     util.MediaUploader
}

// NewPropertyService создает новый сервис объявлений с внедрением зависимостей
func NewPropertyService(
	propertyRepo repository.PropertyRepository,
	cache util.PropertyCache,
	uploader util.MediaUploader,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		cache:        cache,
		uploader:     uploader,
	}
}

// CreateProperty создает новое объявление от имени хоста.
// Агрегат рейтинга всегда стартует с нуля
func (s *PropertyService) CreateProperty(ctx context.Context, hostID string, req *entity.CreatePropertyRequest) (*entity.Property, error) {
	property := &entity.Property{
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		Location: entity.GeoLocation{
			Address: req.Address,
			City:    req.City,
			Country: req.Country,
			Lat:     req.Lat,
			Lng:     req.Lng,
		},
		PricePerNight: req.PricePerNight,
		CleaningFee:   req.CleaningFee,
		MaxGuests:     req.MaxGuests,
		Amenities:     req.Amenities,
	}

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return property, nil
}

// GetProperty получает карточку объекта: сначала Redis кеш, затем MongoDB.
// Заблокированные модератором объекты не видны в публичном доступе
func (s *PropertyService) GetProperty(ctx context.Context, id string) (*entity.Property, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPropertyNotFound
	}

	if cached, err := s.cache.GetProperty(ctx, id); err != nil {
		// Проблемы с кешем не прерывают чтение, идем в MongoDB
		logger.Warn().Err(err).Str("property_id", id).Msg("property cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	property, err := s.propertyRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.Status == entity.PropertyStatusSuspended {
		return nil, ErrPropertyNotFound
	}

	if err := s.cache.SetProperty(ctx, property, propertyCacheTTL); err != nil {
		logger.Warn().Err(err).Str("property_id", id).Msg("property cache write failed")
	}

	return property, nil
}

// SearchProperties выполняет публичный поиск активных объявлений
func (s *PropertyService) SearchProperties(ctx context.Context, query *entity.PropertySearchQuery) ([]entity.Property, error) {
	properties, err := s.propertyRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	return properties, nil
}

// GetHostProperties получает все объявления хоста, включая заблокированные
func (s *PropertyService) GetHostProperties(ctx context.Context, hostID string) ([]entity.Property, error) {
	properties, err := s.propertyRepo.GetByHostID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get host properties: %w", err)
	}

	return properties, nil
}

// UpdateProperty обновляет объявление с проверкой владельца.
// Поля агрегата рейтинга обновлению не подлежат
func (s *PropertyService) UpdateProperty(ctx context.Context, id string, hostID string, req *entity.UpdatePropertyRequest) (*entity.Property, error) {
	property, err := s.getOwnedProperty(ctx, id, hostID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		property.Title = req.Title
	}
	if req.Description != "" {
		property.Description = req.Description
	}
	if req.PricePerNight > 0 {
		property.PricePerNight = req.PricePerNight
	}
	if req.CleaningFee > 0 {
		property.CleaningFee = req.CleaningFee
	}
	if req.MaxGuests > 0 {
		property.MaxGuests = req.MaxGuests
	}
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	s.invalidateCache(ctx, id)

	return property, nil
}

// UploadPhoto загружает фотографию объекта в Cloudinary
// и добавляет полученный URL в документ
func (s *PropertyService) UploadPhoto(ctx context.Context, id string, hostID string, file multipart.File, filename string) (string, error) {
	property, err := s.getOwnedProperty(ctx, id, hostID)
	if err != nil {
		return "", err
	}

	url, err := s.uploader.UploadImage(ctx, file, filename)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if err := s.propertyRepo.AddPhoto(ctx, property.ID, url); err != nil {
		return "", fmt.Errorf("failed to save photo url: %w", err)
	}

	s.invalidateCache(ctx, id)

	return url, nil
}

// DeleteProperty удаляет объявление с проверкой владельца
func (s *PropertyService) DeleteProperty(ctx context.Context, id string, hostID string) error {
	property, err := s.getOwnedProperty(ctx, id, hostID)
	if err != nil {
		return err
	}

	if err := s.propertyRepo.Delete(ctx, property.ID); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.invalidateCache(ctx, id)

	return nil
}

// getOwnedProperty получает объявление и проверяет что hostID его владелец
func (s *PropertyService) getOwnedProperty(ctx context.Context, id string, hostID string) (*entity.Property, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPropertyNotFound
	}

	property, err := s.propertyRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.HostID != hostID {
		return nil, ErrUnauthorized
	}

	return property, nil
}

func (s *PropertyService) invalidateCache(ctx context.Context, id string) {
	if err := s.cache.DeleteProperty(ctx, id); err != nil {
		logger.Warn().Err(err).Str("property_id", id).Msg("property cache invalidation failed")
	}
}
