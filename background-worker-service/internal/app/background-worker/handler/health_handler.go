package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// staleRunThreshold - возраст последнего пересчёта, после которого
// healthcheck помечает его предупреждением
const staleRunThreshold = 48 * time.Hour

type HealthCheckHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	mongoClient *mongo.Client
	runRepo     repository.RunStatusRepository
}

func NewHealthCheckHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	mongoClient *mongo.Client,
	runRepo repository.RunStatusRepository,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:          db,
		redisClient: redisClient,
		mongoClient: mongoClient,
		runRepo:     runRepo,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.checkDatabase(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.checkRedis(ctx); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["redis"] = "healthy"
	}

	if err := h.checkMongo(ctx); err != nil {
		checks["mongodb"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["mongodb"] = "healthy"
	}

	if err := h.checkLastRecompute(ctx); err != nil {
		checks["rating_recompute"] = "warning: " + err.Error()
	} else {
		checks["rating_recompute"] = "healthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")

	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	if err := h.checkRedis(ctx); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}

	if err := h.checkMongo(ctx); err != nil {
		http.Error(w, "mongodb not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthCheckHandler) checkRedis(ctx context.Context) error {
	return h.redisClient.Ping(ctx).Err()
}

func (h *HealthCheckHandler) checkMongo(ctx context.Context) error {
	return h.mongoClient.Ping(ctx, nil)
}

func (h *HealthCheckHandler) checkLastRecompute(ctx context.Context) error {
	run, err := h.runRepo.Get(ctx, entity.JobRatingRecompute)
	if err != nil {
		return err
	}

	age := time.Since(run.FinishedAt)
	if age > staleRunThreshold {
		logger.Warn().
			Dur("age", age).
			Msg("Last rating recompute is stale")
	}

	return nil
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
