package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staynest/marketplace-service/internal/app/marketplace/config"
	"staynest/marketplace-service/internal/app/marketplace/handler"
	"staynest/marketplace-service/internal/app/marketplace/infrastructure/messaging"
	"staynest/marketplace-service/internal/app/marketplace/repository"
	"staynest/marketplace-service/internal/app/marketplace/service"
	"staynest/marketplace-service/internal/app/marketplace/util"
	"staynest/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("marketplace-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "marketplace-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	uploader, err := util.NewCloudinaryUploader(cfg.Cloudinary.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to init Cloudinary client")
	}

	bookingProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.BookingTopic)
	defer bookingProducer.Close()
	reviewProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewTopic)
	defer reviewProducer.Close()
	logger.Info().
		Str("booking_topic", cfg.Kafka.BookingTopic).
		Str("review_topic", cfg.Kafka.ReviewTopic).
		Msg("Initialized Kafka producers")

	profileRepo := repository.NewProfileRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	txnRunner := repository.NewTxnRunner(mongoClient)

	profileService := service.NewProfileService(profileRepo, propertyRepo)
	propertyService := service.NewPropertyService(propertyRepo, redisClient, uploader)
	bookingService := service.NewBookingService(bookingRepo, propertyRepo, bookingProducer)
	reviewService := service.NewReviewService(reviewRepo, bookingRepo, propertyRepo, profileRepo, txnRunner, reviewProducer)
	adminService := service.NewAdminService(profileRepo, propertyRepo, bookingRepo, reviewRepo, txnRunner)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(
		handler.NewProfileHandler(profileService),
		handler.NewPropertyHandler(propertyService),
		handler.NewBookingHandler(bookingService),
		handler.NewReviewHandler(reviewService),
		handler.NewAdminHandler(adminService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Marketplace Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Marketplace Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Marketplace Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()

			if err = client.Ping(pingCtx, nil); err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
