package util

import (
	"context"
	"mime/multipart"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
)

// PropertyCache интерфейс для работы с Redis кешем объектов
// Используется для dependency injection и упрощения тестирования
type PropertyCache interface {
	SetProperty(ctx context.Context, property *entity.Property, ttl time.Duration) error
	GetProperty(ctx context.Context, propertyID string) (*entity.Property, error)
	DeleteProperty(ctx context.Context, propertyID string) error
	Close() error
}

// MediaUploader интерфейс для загрузки фотографий объектов в CDN
// Используется для dependency injection и упрощения тестирования
type MediaUploader interface {
	UploadImage(ctx context.Context, file multipart.File, filename string) (string, error)
	DeleteImage(ctx context.Context, publicID string) error
}
