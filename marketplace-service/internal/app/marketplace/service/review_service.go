package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/infrastructure"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/pkg/logger"
	"staynest/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Создание отзыва - единица работы в одной MongoDB-транзакции:
// вставка отзыва, флаг is_reviewed бронирования и оба денормализованных
// агрегата фиксируются или откатываются вместе
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	bookingRepo   repository.BookingRepository
	propertyRepo  repository.PropertyRepository
	profileRepo   repository.ProfileRepository
	txnRunner     repository.TxnRunner
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	profileRepo repository.ProfileRepository,
	txnRunner repository.TxnRunner,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		bookingRepo:   bookingRepo,
		propertyRepo:  propertyRepo,
		profileRepo:   profileRepo,
		txnRunner:     txnRunner,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв по завершенному бронированию.
//  1. Проверяет что автор - гость бронирования, бронирование завершено
//     и еще не имеет отзыва
//  2. В одной транзакции: вставляет отзыв, взводит is_reviewed,
//     вмешивает оценку в агрегаты объекта и хоста
//  3. После коммита отправляет событие REVIEW_CREATED в Kafka
//
// Гонка двух отзывов на одно бронирование разрешается уникальным
// индексом по booking_id: проигравшая транзакция откатывается целиком
func (s *ReviewService) CreateReview(ctx context.Context, guestID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.GuestID != guestID {
		return nil, ErrUnauthorized
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}
	// Быстрая проверка по флагу; гонку двух параллельных запросов
	// закрывает уникальный индекс внутри транзакции
	if booking.IsReviewed {
		metrics.ReviewConflicts.Inc()
		return nil, ErrReviewExists
	}

	review := &entity.Review{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		GuestID:    booking.GuestID,
		HostID:     booking.HostID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Categories: req.Categories,
		IsVerified: true,
	}

	txnErr := s.txnRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reviewRepo.Create(txCtx, review); err != nil {
			return err
		}
		if err := s.bookingRepo.MarkReviewed(txCtx, booking.ID); err != nil {
			return err
		}
		if err := s.propertyRepo.ApplyRating(txCtx, booking.PropertyID, req.Rating); err != nil {
			return err
		}
		return s.profileRepo.ApplyHostRating(txCtx, booking.HostID, req.Rating)
	})
	if txnErr != nil {
		metrics.RecordMongoTransaction("marketplace-service", "create_review", false)
		if errors.Is(txnErr, repository.ErrReviewExists) {
			metrics.ReviewConflicts.Inc()
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("failed to create review: %w", txnErr)
	}

	metrics.RecordMongoTransaction("marketplace-service", "create_review", true)
	metrics.ReviewsCreated.Inc()

	s.publishReviewEvent(ctx, review)

	return review, nil
}

// GetReview получает отзыв по ID
func (s *ReviewService) GetReview(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	review, err := s.reviewRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// GetPropertyReviews получает все отзывы по объекту
func (s *ReviewService) GetPropertyReviews(ctx context.Context, propertyID string) ([]entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return nil, ErrPropertyNotFound
	}

	reviews, err := s.reviewRepo.GetByPropertyID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property reviews: %w", err)
	}

	return reviews, nil
}

// GetGuestReviews получает все отзывы, написанные гостем
func (s *ReviewService) GetGuestReviews(ctx context.Context, guestID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByGuestID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest reviews: %w", err)
	}

	return reviews, nil
}

// UpdateReview обновляет отзыв с проверкой авторства.
// Агрегаты рейтинга при правке НЕ пересчитываются:
// расхождение устраняет полный пересчет в background worker
func (s *ReviewService) UpdateReview(ctx context.Context, id string, guestID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.GuestID != guestID {
		return nil, ErrUnauthorized
	}

	if req.Rating > 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return review, nil
}

// ReplyToReview добавляет ответ хоста на отзыв о его объекте
func (s *ReviewService) ReplyToReview(ctx context.Context, id string, hostID string, req *entity.HostReplyRequest) (*entity.Review, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.HostID != hostID {
		return nil, ErrUnauthorized
	}

	reply := &entity.HostReply{
		Text:      req.Text,
		RepliedAt: time.Now(),
	}

	if err := s.reviewRepo.SetHostReply(ctx, review.ID, reply); err != nil {
		return nil, fmt.Errorf("failed to set host reply: %w", err)
	}
	review.HostReply = reply

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой авторства.
// Агрегаты рейтинга при удалении НЕ пересчитываются -
// их чинит полный пересчет
func (s *ReviewService) DeleteReview(ctx context.Context, id string, guestID string) error {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}

	if review.GuestID != guestID {
		return ErrUnauthorized
	}

	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// publishReviewEvent отправляет событие REVIEW_CREATED в Kafka.
// Отзыв уже зафиксирован, проблемы с Kafka не критичны
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType:  "REVIEW_CREATED",
		ReviewID:   review.ID.Hex(),
		BookingID:  review.BookingID.Hex(),
		PropertyID: review.PropertyID.Hex(),
		GuestID:    review.GuestID,
		HostID:     review.HostID,
		Rating:     review.Rating,
		Timestamp:  time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("review_id", event.ReviewID).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Error().Err(err).Str("review_id", event.ReviewID).Msg("failed to publish review event")
	}
}
