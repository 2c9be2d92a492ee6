//go:build e2e

package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного background-worker-service
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8084"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// TestWorkerHealthEndpoints проверяет, что воркер поднялся, его зависимости
// живы и стартовый пересчёт рейтингов отметился в статусе запусков
func TestWorkerHealthEndpoints(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	t.Log("Step 1: Liveness")
	resp, err := client.Get(BaseURL + "/health/liveness")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Log("Step 2: Readiness")
	resp, err = client.Get(BaseURL + "/health/readiness")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Log("Step 3: Full health report")
	resp, err = client.Get(BaseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["database"])
	assert.Equal(t, "healthy", health.Checks["redis"])
	assert.Equal(t, "healthy", health.Checks["mongodb"])
	// Стартовый пересчёт выполняется при запуске сервиса
	assert.Equal(t, "healthy", health.Checks["rating_recompute"])
}

// TestWorkerMetricsExposed проверяет, что метрики фоновых задач
// опубликованы на /metrics
func TestWorkerMetricsExposed(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(BaseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "rating_recompute_runs_total"))
	assert.True(t, strings.Contains(text, "rating_recompute_duration_seconds"))
}
