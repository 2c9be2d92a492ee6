//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"staynest/marketplace-service/internal/app/marketplace/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// AuthBaseURL - адрес запущенного auth-service (выдает JWT)
	AuthBaseURL = "http://localhost:8081"
	// BaseURL - адрес запущенного marketplace-service
	// Для E2E тестов оба сервиса должны быть запущены через docker-compose
	BaseURL = "http://localhost:8082"
)

// TestMarketplaceBookingFlow тестирует полный путь бронирования:
// хост публикует объект, гость находит его в поиске, бронирует,
// повторное бронирование тех же дат отклоняется, хост подтверждает,
// отзыв по незавершённому бронированию не принимается.
func TestMarketplaceBookingFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	hostToken := registerUser(t, client, "host")
	guestToken := registerUser(t, client, "guest")
	city := fmt.Sprintf("Testville-%d", time.Now().UnixNano())

	// ==================== Step 1: Host publishes a property ====================
	t.Log("Step 1: Creating property")

	property := postJSON[entity.Property](t, client, "/host/properties", entity.CreatePropertyRequest{
		Title:         "Cozy loft near the old town",
		Description:   "Bright loft with a full kitchen, fast wifi and a view of the square",
		Address:       "12 Main Street",
		City:          city,
		Country:       "Testland",
		PricePerNight: 120,
		CleaningFee:   30,
		MaxGuests:     3,
		Amenities:     []string{"wifi", "kitchen"},
	}, hostToken, http.StatusCreated)

	require.False(t, property.ID.IsZero())
	assert.Equal(t, entity.PropertyStatusActive, property.Status)

	// ==================== Step 2: Guest finds it in search ====================
	t.Log("Step 2: Searching by city")

	found := getJSON[entity.PropertyListResponse](t, client, "/properties?city="+city, "", http.StatusOK)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, property.ID, found.Properties[0].ID)

	// ==================== Step 3: Guest books ====================
	t.Log("Step 3: Creating booking")

	checkIn := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	bookingReq := entity.CreateBookingRequest{
		PropertyID:    property.ID.Hex(),
		CheckIn:       checkIn,
		CheckOut:      checkIn.AddDate(0, 0, 4),
		Adults:        2,
		PaymentMethod: "card",
	}

	booking := postJSON[entity.Booking](t, client, "/bookings", bookingReq, guestToken, http.StatusCreated)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	// 4 ночи * 120 + уборка; сервисный сбор и налоги сверху
	assert.GreaterOrEqual(t, booking.TotalPrice, float64(4*120+30))

	// ==================== Step 4: Same dates are taken ====================
	t.Log("Step 4: Verifying double booking is rejected")

	doRequest(t, client, http.MethodPost, "/bookings", bookingReq, guestToken, http.StatusConflict)

	// ==================== Step 5: Host confirms ====================
	t.Log("Step 5: Confirming booking")

	confirmed := postJSON[entity.Booking](t, client, "/host/bookings/"+booking.ID.Hex()+"/confirm", nil, hostToken, http.StatusOK)
	assert.Equal(t, entity.BookingStatusConfirmed, confirmed.Status)

	// ==================== Step 6: Review requires a completed stay ====================
	t.Log("Step 6: Verifying review before checkout is rejected")

	doRequest(t, client, http.MethodPost, "/reviews", entity.CreateReviewRequest{
		BookingID: booking.ID.Hex(),
		Rating:    5,
		Comment:   "Trying to review before the stay has even started",
	}, guestToken, http.StatusBadRequest)

	// ==================== Step 7: Guest sees the booking ====================
	t.Log("Step 7: Listing guest bookings")

	mine := getJSON[entity.BookingListResponse](t, client, "/bookings", guestToken, http.StatusOK)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, entity.BookingStatusConfirmed, mine.Bookings[0].Status)
}

// TestGuestCannotManageProperties проверяет ролевую границу:
// гость не может публиковать объявления.
func TestGuestCannotManageProperties(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	guestToken := registerUser(t, client, "guest")

	doRequest(t, client, http.MethodPost, "/host/properties", entity.CreatePropertyRequest{
		Title:         "Should never be created",
		Description:   "Guests are not allowed to publish property listings",
		Address:       "1 Nowhere Lane",
		City:          "Testville",
		Country:       "Testland",
		PricePerNight: 50,
		MaxGuests:     1,
	}, guestToken, http.StatusForbidden)
}

// registerUser создает пользователя в auth-service и возвращает access token
func registerUser(t *testing.T, client *http.Client, role string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"email":    fmt.Sprintf("e2e-%s-%d@example.com", role, time.Now().UnixNano()),
		"password": "securepassword123",
		"name":     "E2E " + role,
		"role":     role,
	})
	require.NoError(t, err)

	resp, err := client.Post(AuthBaseURL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Tokens.AccessToken)

	return out.Tokens.AccessToken
}

func postJSON[T any](t *testing.T, client *http.Client, path string, body interface{}, token string, wantStatus int) T {
	t.Helper()
	return decodeResponse[T](t, doRequest(t, client, http.MethodPost, path, body, token, wantStatus))
}

func getJSON[T any](t *testing.T, client *http.Client, path string, token string, wantStatus int) T {
	t.Helper()
	return decodeResponse[T](t, doRequest(t, client, http.MethodGet, path, nil, token, wantStatus))
}

func doRequest(t *testing.T, client *http.Client, method, path string, body interface{}, token string, wantStatus int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, BaseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)

	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status for %s %s: %s", method, path, out.String())
	return out.Bytes()
}

func decodeResponse[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}
