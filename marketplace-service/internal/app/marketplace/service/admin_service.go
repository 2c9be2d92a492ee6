package service

import (
	"context"
	"errors"
	"fmt"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminService обрабатывает операции модерации маркетплейса.
// Каскадные удаления выполняются в одной MongoDB-транзакции,
// чтобы не оставлять осиротевшие бронирования и отзывы
type AdminService struct {
	profileRepo  repository.ProfileRepository
	propertyRepo repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	reviewRepo   repository.ReviewRepository
	txnRunner    repository.TxnRunner
}

// NewAdminService создает новый сервис модерации с внедрением зависимостей
func NewAdminService(
	profileRepo repository.ProfileRepository,
	propertyRepo repository.PropertyRepository,
	bookingRepo repository.BookingRepository,
	reviewRepo repository.ReviewRepository,
	txnRunner repository.TxnRunner,
) *AdminService {
	return &AdminService{
		profileRepo:  profileRepo,
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		reviewRepo:   reviewRepo,
		txnRunner:    txnRunner,
	}
}

// ListBookings возвращает страницу всех бронирований платформы
func (s *AdminService) ListBookings(ctx context.Context, limit, offset int64) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// SuspendProperty скрывает объявление из публичного доступа
func (s *AdminService) SuspendProperty(ctx context.Context, id string, adminID string, reason string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPropertyNotFound
	}

	if err := s.propertyRepo.SetStatus(ctx, objectID, entity.PropertyStatusSuspended); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to suspend property: %w", err)
	}

	logger.Info().
		Str("property_id", id).
		Str("admin_id", adminID).
		Str("reason", reason).
		Msg("property suspended by moderator")

	return nil
}

// DeleteProperty удаляет объявление вместе с его бронированиями и отзывами
func (s *AdminService) DeleteProperty(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPropertyNotFound
	}

	if _, err := s.propertyRepo.GetByID(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to get property: %w", err)
	}

	txnErr := s.txnRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.DeleteByPropertyID(txCtx, objectID); err != nil {
			return err
		}
		if err := s.bookingRepo.DeleteByPropertyID(txCtx, objectID); err != nil {
			return err
		}
		return s.propertyRepo.Delete(txCtx, objectID)
	})
	if txnErr != nil {
		return fmt.Errorf("failed to delete property: %w", txnErr)
	}

	return nil
}

// DeleteReview удаляет отзыв по решению модератора.
// Агрегаты не пересчитываются - их чинит полный пересчет
func (s *AdminService) DeleteReview(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	if err := s.reviewRepo.Delete(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// DeleteUser удаляет профиль пользователя вместе с его объявлениями,
// бронированиями и отзывами
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	txnErr := s.txnRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.DeleteByUserID(txCtx, userID); err != nil {
			return err
		}
		if err := s.bookingRepo.DeleteByUserID(txCtx, userID); err != nil {
			return err
		}
		if err := s.propertyRepo.DeleteByHostID(txCtx, userID); err != nil {
			return err
		}
		if err := s.profileRepo.Delete(txCtx, userID); err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
			return err
		}
		return nil
	})
	if txnErr != nil {
		return fmt.Errorf("failed to delete user data: %w", txnErr)
	}

	return nil
}
