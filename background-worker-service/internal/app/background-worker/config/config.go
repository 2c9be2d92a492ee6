package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения Background Worker Service
// Включает конфигурацию для PostgreSQL, MongoDB, Redis, Kafka и SMTP
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	SMTP         SMTPConfig
	CronSchedule CronScheduleConfig
	Sweep        SweepConfig
}

// ServerConfig - настройки HTTP сервера healthcheck и метрик
type ServerConfig struct {
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Используется для платёжного реестра
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig - настройки подключения к MongoDB marketplace-service
// Worker читает отзывы и перезаписывает агрегаты рейтингов напрямую
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig - настройки подключения к Redis
// Используется для хранения статуса последнего запуска фоновых задач
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration // TTL записи о последнем запуске
}

// KafkaConfig - настройки Kafka для подписки на события бронирований
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// SMTPConfig - настройки почтового сервера для писем-подтверждений.
// При пустом Host письма не отправляются, воркер работает дальше.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// CronScheduleConfig - расписания cron задач (5-польный формат)
type CronScheduleConfig struct {
	RatingRecompute string // полный пересчёт рейтингов
	BookingSweep    string // завершение и протухание броней
}

// SweepConfig - пороги для прохода по жизненному циклу броней
type SweepConfig struct {
	PendingTTL time.Duration // сколько pending-бронь ждёт подтверждения
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	runTTLHours := getEnvInt("REDIS_RUN_STATUS_TTL_HOURS", 168)
	pendingTTLHours := getEnvInt("BOOKING_PENDING_TTL_HOURS", 24)

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8084"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5434"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "payments_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			Database: getEnv("MONGODB_DATABASE", "marketplace_service"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 3), // отдельная БД для статусов задач
			TTL:      time.Duration(runTTLHours) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:    getEnv("KAFKA_TOPIC", "booking_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "background-worker-group"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "bookings@staynest.example"),
		},
		CronSchedule: CronScheduleConfig{
			// Пересчёт рейтингов раз в сутки ночью, бронь метём каждые 30 минут
			RatingRecompute: getEnv("CRON_RATING_RECOMPUTE", "0 4 * * *"),
			BookingSweep:    getEnv("CRON_BOOKING_SWEEP", "*/30 * * * *"),
		},
		Sweep: SweepConfig{
			PendingTTL: time.Duration(pendingTTLHours) * time.Hour,
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
