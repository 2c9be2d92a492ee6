package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"staynest/marketplace-service/internal/app/marketplace/entity"
	"staynest/marketplace-service/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, guestID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, guestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) GetReview(ctx context.Context, id string) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) GetPropertyReviews(ctx context.Context, propertyID string) ([]entity.Review, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) GetGuestReviews(ctx context.Context, guestID string) ([]entity.Review, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, id string, guestID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, id, guestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) ReplyToReview(ctx context.Context, id string, hostID string, req *entity.HostReplyRequest) (*entity.Review, error) {
	args := m.Called(ctx, id, hostID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, id string, guestID string) error {
	args := m.Called(ctx, id, guestID)
	return args.Error(0)
}

// setupReviewRouter собирает маршруты отзывов с подстановкой user_id в контекст
func setupReviewRouter(mockService *MockReviewService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewReviewHandler(mockService)

	authenticated := router.Group("")
	authenticated.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	authenticated.POST("/reviews", h.CreateReview)
	authenticated.PATCH("/reviews/:review_id", h.UpdateReview)
	authenticated.DELETE("/reviews/:review_id", h.DeleteReview)

	router.GET("/properties/:property_id/reviews", h.GetPropertyReviews)

	return router
}

func performJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReviewHandler_Created(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 5, Comment: "Wonderful stay, will come back"}
	mockService.On("CreateReview", mock.Anything, "guest-1", mock.AnythingOfType("*entity.CreateReviewRequest")).Return(review, nil)

	w := performJSON(router, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    5,
		Comment:   "Wonderful stay, will come back",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewHandler_ValidationFailure(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	// Оценка вне диапазона 1-5
	w := performJSON(router, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    7,
		Comment:   "Rating out of range here",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReviewHandler_Conflict(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	mockService.On("CreateReview", mock.Anything, "guest-1", mock.Anything).Return(nil, service.ErrReviewExists)

	w := performJSON(router, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    4,
		Comment:   "Second attempt at a review",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewHandler_BookingNotCompleted(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	mockService.On("CreateReview", mock.Anything, "guest-1", mock.Anything).Return(nil, service.ErrBookingNotCompleted)

	w := performJSON(router, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    4,
		Comment:   "Trying to review too early",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReviewHandler_NotBookingGuest(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-2")

	mockService.On("CreateReview", mock.Anything, "guest-2", mock.Anything).Return(nil, service.ErrUnauthorized)

	w := performJSON(router, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    4,
		Comment:   "Review from a stranger",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetPropertyReviewsHandler_OK(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	propertyID := primitive.NewObjectID().Hex()
	mockService.On("GetPropertyReviews", mock.Anything, propertyID).Return([]entity.Review{{Rating: 5}, {Rating: 3}}, nil)

	w := performJSON(router, http.MethodGet, "/properties/"+propertyID+"/reviews", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ReviewListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
}

func TestDeleteReviewHandler_NotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupReviewRouter(mockService, "guest-1")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("DeleteReview", mock.Anything, reviewID, "guest-1").Return(service.ErrReviewNotFound)

	w := performJSON(router, http.MethodDelete, "/reviews/"+reviewID, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
