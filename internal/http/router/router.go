package router

import (
	"github.com/gin-gonic/gin"

	"github.com/gradlinkph/gradlink-backend/internal/config"
	"github.com/gradlinkph/gradlink-backend/internal/http/handlers"
	"github.com/gradlinkph/gradlink-backend/internal/http/middleware"
	"github.com/gradlinkph/gradlink-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	bookingHandler *handlers.BookingHandler,
	matchingHandler *handlers.MatchingHandler,
	graduateHandler *handlers.GraduateHandler,
	ratingHandler *handlers.RatingHandler,
	portfolioHandler *handlers.PortfolioHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/categories", graduateHandler.ListCategories)
	api.GET("/graduates", graduateHandler.ListByCategory)
	api.GET("/graduates/nearby", graduateHandler.Nearby)
	api.GET("/graduates/top", graduateHandler.TopRated)
	api.GET("/graduates/:id", middleware.UUIDValidator("id"), graduateHandler.Get)
	api.GET("/graduates/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.ListByGraduate)
	api.GET("/graduates/:id/portfolio", middleware.UUIDValidator("id"), portfolioHandler.ListByGraduate)
	api.GET("/portfolio/:id", middleware.UUIDValidator("id"), portfolioHandler.Get)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/graduates/me/profile", graduateHandler.GetMe)
		protected.PUT("/graduates/me/profile", graduateHandler.UpdateMe)
		protected.PATCH("/graduates/me/availability", graduateHandler.SetAvailability)

		protected.GET("/matching/probe", matchingHandler.Probe)
		protected.GET("/matching/urgent", matchingHandler.OpenUrgentJobs)

		protected.POST("/bookings/urgent", bookingHandler.CreateUrgent)
		protected.POST("/bookings/category", bookingHandler.CreateCategory)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.GET("/bookings/:id", middleware.UUIDValidator("id"), bookingHandler.Get)
		protected.POST("/bookings/:id/accept", middleware.UUIDValidator("id"), bookingHandler.Accept)
		protected.POST("/bookings/:id/reject", middleware.UUIDValidator("id"), bookingHandler.Reject)
		protected.POST("/bookings/:id/cancel", middleware.UUIDValidator("id"), bookingHandler.Cancel)
		protected.POST("/bookings/:id/start", middleware.UUIDValidator("id"), bookingHandler.Start)
		protected.POST("/bookings/:id/worker-complete", middleware.UUIDValidator("id"), bookingHandler.WorkerComplete)
		protected.POST("/bookings/:id/reopen", middleware.UUIDValidator("id"), bookingHandler.Reopen)
		protected.POST("/bookings/:id/complete", middleware.UUIDValidator("id"), bookingHandler.Complete)
		protected.POST("/bookings/:id/confirm-payment", middleware.UUIDValidator("id"), bookingHandler.ConfirmPayment)
		protected.POST("/bookings/:id/rating", middleware.UUIDValidator("id"), ratingHandler.Create)

		protected.POST("/graduates/:id/ratings/recompute", middleware.UUIDValidator("id"), ratingHandler.Recompute)

		protected.POST("/portfolio", portfolioHandler.Create)
		protected.PUT("/portfolio/:id", middleware.UUIDValidator("id"), portfolioHandler.Update)
		protected.DELETE("/portfolio/:id", middleware.UUIDValidator("id"), portfolioHandler.Delete)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
	}

	return r
}
