package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/repository"
)

// ProfileService обрабатывает бизнес-логику маркетплейс-профилей
type ProfileService struct {
	profileRepo  repository.ProfileRepository
	propertyRepo repository.PropertyRepository
}

// NewProfileService создает новый сервис профилей с внедрением зависимостей
func NewProfileService(
	profileRepo repository.ProfileRepository,
	propertyRepo repository.PropertyRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo:  profileRepo,
		propertyRepo: propertyRepo,
	}
}

// GetProfile получает собственный профиль пользователя
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile обновляет описательные поля собственного профиля.
// Профиль создается лениво при первом обновлении; агрегаты host_details
// при upsert не трогаются
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *entity.UpdateProfileRequest) (*entity.Profile, error) {
	profile := &entity.Profile{
		UserID:    userID,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		UpdatedAt: time.Now(),
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	updated, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get updated profile: %w", err)
	}

	return updated, nil
}

// GetHostProfile получает публичный профиль хоста вместе с его объявлениями.
// Агрегаты рейтинга читаются как обычные числовые поля документа
func (s *ProfileService) GetHostProfile(ctx context.Context, hostID string) (*entity.HostProfileResponse, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, hostID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get host profile: %w", err)
	}

	properties, err := s.propertyRepo.GetByHostID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get host properties: %w", err)
	}

	return &entity.HostProfileResponse{
		UserID:      profile.UserID,
		Name:        profile.Name,
		Bio:         profile.Bio,
		AvatarURL:   profile.AvatarURL,
		HostDetails: profile.HostDetails,
		Properties:  properties,
	}, nil
}
