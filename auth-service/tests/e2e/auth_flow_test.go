//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"staynest/auth-service/internal/app/auth/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного auth-service
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8081"
)

// TestFullAuthenticationFlow тестирует полный цикл аутентификации:
// регистрация, логин, /me, обновление токена, logout и проверка
// что отозванный токен больше не работает.
func TestFullAuthenticationFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	email := fmt.Sprintf("e2e-host-%d@example.com", time.Now().UnixNano())
	password := "securepassword123"

	// ==================== Step 1: Register ====================
	t.Log("Step 1: Registering new host")

	registerResponse := postJSON[entity.AuthResponse](t, client, "/auth/register", entity.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "E2E Host",
		Role:     entity.RoleHost,
	}, "", http.StatusCreated)

	require.NotEmpty(t, registerResponse.Tokens.AccessToken)
	require.NotEmpty(t, registerResponse.Tokens.RefreshToken)
	assert.Equal(t, entity.RoleHost, registerResponse.User.Role)

	// ==================== Step 2: Login ====================
	t.Log("Step 2: Logging in")

	loginResponse := postJSON[entity.AuthResponse](t, client, "/auth/login", entity.LoginRequest{
		Email:    email,
		Password: password,
	}, "", http.StatusOK)

	accessToken := loginResponse.Tokens.AccessToken
	refreshToken := loginResponse.Tokens.RefreshToken

	// ==================== Step 3: Get current user ====================
	t.Log("Step 3: Fetching /auth/me")

	me := getJSON[entity.User](t, client, "/auth/me", accessToken, http.StatusOK)
	assert.Equal(t, email, me.Email)

	// ==================== Step 4: Refresh tokens ====================
	t.Log("Step 4: Refreshing tokens")

	pair := postJSON[entity.TokenPair](t, client, "/auth/refresh", entity.RefreshRequest{
		RefreshToken: refreshToken,
	}, "", http.StatusOK)

	assert.NotEqual(t, refreshToken, pair.RefreshToken)
	accessToken = pair.AccessToken

	// ==================== Step 5: Logout ====================
	t.Log("Step 5: Logging out")

	doRequest(t, client, http.MethodPost, "/auth/logout", nil, accessToken, http.StatusOK)

	// ==================== Step 6: Token no longer works ====================
	t.Log("Step 6: Verifying revoked token is rejected")

	doRequest(t, client, http.MethodGet, "/auth/me", nil, accessToken, http.StatusUnauthorized)
}

// TestAdminRoleIsNotSelfAssignable проверяет, что регистрация
// с ролью admin отклоняется.
func TestAdminRoleIsNotSelfAssignable(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	body, _ := json.Marshal(map[string]string{
		"email":    fmt.Sprintf("e2e-admin-%d@example.com", time.Now().UnixNano()),
		"password": "securepassword123",
		"name":     "Wannabe Admin",
		"role":     "admin",
	})

	resp, err := client.Post(BaseURL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
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
