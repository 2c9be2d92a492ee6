package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staynest/background-worker-service/internal/app/background-worker/config"
	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/background-worker-service/internal/app/background-worker/handler"
	"staynest/background-worker-service/internal/app/background-worker/processor"
	"staynest/background-worker-service/internal/app/background-worker/repository"
	"staynest/background-worker-service/internal/app/background-worker/service"
	"staynest/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("background-worker-service", logLevel)

	if logstashAddr := os.Getenv("LOGSTASH_ADDR"); logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "background-worker-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout")
		}
	}

	logger.Info().Msg("Starting Background Worker Service...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	// PostgreSQL хранит платёжный реестр
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Msg("Successfully connected to PostgreSQL")

	if err := db.AutoMigrate(&entity.PaymentRecord{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate payment ledger schema")
	}

	// MongoDB marketplace-service: отзывы, объекты, профили, брони
	mongoClient, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	logger.Info().Msg("Successfully connected to MongoDB")

	// Redis хранит статус последнего запуска фоновых задач
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	paymentRepo := repository.NewPaymentRepository(db)
	ratingRepo := repository.NewRatingRepository(mongoDB)
	bookingRepo := repository.NewBookingSweepRepository(mongoDB)
	runRepo := repository.NewRunStatusRepository(redisClient, cfg.Redis.TTL)
	logger.Info().Msg("Repositories initialized")

	var mailer service.MailSender
	if cfg.SMTP.Host != "" {
		smtpMailer, err := service.NewSMTPMailSender(cfg.SMTP)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize SMTP client")
		}
		mailer = smtpMailer
		logger.Info().Str("host", cfg.SMTP.Host).Msg("SMTP client initialized")
	} else {
		mailer = service.NewNoopMailSender()
		logger.Warn().Msg("SMTP is not configured, confirmation emails are disabled")
	}

	ratingSvc := service.NewRatingMaintenanceService(ratingRepo, runRepo)
	lifecycleSvc := service.NewBookingLifecycleService(bookingRepo, cfg.Sweep.PendingTTL)
	paymentSvc := service.NewPaymentProcessingService(paymentRepo, mailer)
	logger.Info().Msg("Services initialized")

	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		paymentSvc,
	)

	kafkaConsumer.Start(ctx)
	defer kafkaConsumer.Stop()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("Kafka consumer started")

	cronScheduler := processor.NewCronScheduler(ratingSvc, lifecycleSvc)

	if err := cronScheduler.Start(ctx, cfg.CronSchedule.RatingRecompute, cfg.CronSchedule.BookingSweep); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	healthHandler := handler.NewHealthCheckHandler(db, redisClient, mongoClient, runRepo)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Starting healthcheck HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().Msg("Background Worker Service is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Background Worker Service...")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// Retry logic для устойчивости при запуске в Docker
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				if pingErr := sqlDB.Ping(); pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(10)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectMongo устанавливает соединение с MongoDB
func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err = mongo.Connect(connectCtx, clientOptions)
		cancel()

		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				return client, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to MongoDB, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", err)
}

// connectRedis устанавливает соединение с Redis
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	for i := 0; i < 10; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Int("attempt", i+1).Msg("Failed to connect to Redis, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts")
}
