package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="marketplace"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
		// Бакеты от 1ms до 10s
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики (PostgreSQL и MongoDB)
// =============================================================================

// DbQueryDuration - время выполнения запросов к хранилищу
// collection: имя таблицы или Mongo-коллекции
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// MongoTransactionsTotal - транзакции MongoDB (unit of work создания отзыва)
var MongoTransactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mongo_transactions_total",
		Help: "Total number of MongoDB multi-document transactions",
	},
	[]string{"service", "name", "outcome"}, // outcome: commit, abort
)

// =============================================================================
// Redis Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaMessagesConsumed - полученные сообщения
var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики (специфичные для StayNest)
// =============================================================================

// --- Auth Service ---

// AuthRegistrations - регистрации пользователей
var AuthRegistrations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of user registrations",
	},
	[]string{"role"}, // guest, host
)

// AuthLogins - попытки входа
var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed
)

// --- Marketplace Service ---

// BookingsCreated - созданные бронирования
var BookingsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total number of bookings created",
	},
)

// BookingStatusChanges - переходы статусов бронирований
var BookingStatusChanges = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "booking_status_changes_total",
		Help: "Total number of booking status transitions",
	},
	[]string{"status"}, // confirmed, cancelled, completed, expired
)

// ReviewsCreated - созданные отзывы
var ReviewsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	},
)

// ReviewConflicts - отклонённые повторные отзывы на одно бронирование
var ReviewConflicts = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_conflicts_total",
		Help: "Total number of rejected duplicate reviews per booking",
	},
)

// --- Background Worker ---

// RatingRecomputeRuns - запуски полного пересчёта рейтингов
var RatingRecomputeRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rating_recompute_runs_total",
		Help: "Total number of full rating recompute runs",
	},
	[]string{"outcome"}, // success, failure
)

// RatingRecomputeDuration - длительность полного пересчёта
var RatingRecomputeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "rating_recompute_duration_seconds",
		Help:    "Duration of full rating recompute runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	},
)

// NotificationEmailsSent - отправленные письма
var NotificationEmailsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_emails_sent_total",
		Help: "Total number of notification emails sent",
	},
	[]string{"type", "outcome"}, // type: booking_confirmation, ...
)
