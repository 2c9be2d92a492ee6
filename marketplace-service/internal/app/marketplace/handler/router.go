package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"staynest/pkg/logger"
	"staynest/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	profileHandler *ProfileHandler,
	propertyHandler *PropertyHandler,
	bookingHandler *BookingHandler,
	reviewHandler *ReviewHandler,
	adminHandler *AdminHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("marketplace-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "marketplace-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации)
	properties := router.Group("/properties")
	{
		properties.GET("", propertyHandler.SearchProperties)
		properties.GET("/:property_id", propertyHandler.GetProperty)
		properties.GET("/:property_id/reviews", reviewHandler.GetPropertyReviews)
	}
	router.GET("/hosts/:host_id", profileHandler.GetHostProfile)

	// Профиль текущего пользователя
	profile := router.Group("/profile")
	profile.Use(authMiddleware.Authenticate())
	{
		profile.GET("", profileHandler.GetMyProfile)
		profile.PATCH("", profileHandler.UpdateMyProfile)
	}

	// Эндпоинты хоста: управление объявлениями и бронированиями своих объектов
	host := router.Group("/host")
	host.Use(authMiddleware.Authenticate())
	host.Use(authMiddleware.RequireRole("host", "admin"))
	{
		host.POST("/properties", propertyHandler.CreateProperty)
		host.GET("/properties", propertyHandler.GetMyProperties)
		host.PATCH("/properties/:property_id", propertyHandler.UpdateProperty)
		host.POST("/properties/:property_id/photos", propertyHandler.UploadPhoto)
		host.DELETE("/properties/:property_id", propertyHandler.DeleteProperty)

		host.GET("/bookings", bookingHandler.GetHostBookings)
		host.POST("/bookings/:booking_id/confirm", bookingHandler.ConfirmBooking)

		host.POST("/reviews/:review_id/reply", reviewHandler.ReplyToReview)
	}

	// Эндпоинты гостя: бронирования и отзывы
	bookings := router.Group("/bookings")
	bookings.Use(authMiddleware.Authenticate())
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.GetMyBookings)
		bookings.GET("/:booking_id", bookingHandler.GetBooking)
		bookings.POST("/:booking_id/cancel", bookingHandler.CancelBooking)
	}

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("", reviewHandler.CreateReview)
		reviews.GET("", reviewHandler.GetMyReviews)
		reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id", reviewHandler.DeleteReview)
	}

	// Admin эндпоинты - только для администраторов
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole("admin"))
	{
		admin.GET("/bookings", adminHandler.ListBookings)
		admin.POST("/properties/:property_id/suspend", adminHandler.SuspendProperty)
		admin.DELETE("/properties/:property_id", adminHandler.DeleteProperty)
		admin.DELETE("/reviews/:review_id", adminHandler.DeleteReview)
		admin.DELETE("/users/:user_id", adminHandler.DeleteUser)
	}

	return router
}
