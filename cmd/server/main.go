package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gradlinkph/gradlink-backend/internal/config"
	"github.com/gradlinkph/gradlink-backend/internal/db"
	"github.com/gradlinkph/gradlink-backend/internal/goroutine"
	httpHandlers "github.com/gradlinkph/gradlink-backend/internal/http/handlers"
	httpRouter "github.com/gradlinkph/gradlink-backend/internal/http/router"
	"github.com/gradlinkph/gradlink-backend/internal/logger"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
	"github.com/gradlinkph/gradlink-backend/internal/service"
	"github.com/gradlinkph/gradlink-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	graduateRepo := repository.NewGraduateRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	portfolioRepo := repository.NewPortfolioRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	notificationService := service.NewNotificationService(notificationRepo)
	hub.SetNotificationSaver(notificationService)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, graduateRepo, tokenManager)
	geoMatcher := service.NewGeoMatcher(graduateRepo)
	guard := service.NewAvailabilityGuard(graduateRepo, bookingRepo)
	bookingService := service.NewBookingService(
		bookingRepo,
		categoryRepo,
		graduateRepo,
		userRepo,
		guard,
		geoMatcher,
		ws.NewBookingNotifier(hub),
		cfg.DefaultRadiusKm,
	)
	matchingService := service.NewMatchingService(geoMatcher, bookingRepo, userRepo)
	ratingService := service.NewRatingService(ratingRepo, bookingRepo)
	graduateService := service.NewGraduateService(graduateRepo, categoryRepo, service.NewCacheService())
	portfolioService := service.NewPortfolioService(portfolioRepo)

	// В development наполняем базу демо-исполнителями.
	if cfg.Env == "development" {
		seedService := service.NewSeedService(userRepo, graduateRepo, categoryRepo)
		goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
			if err := seedService.SeedDemoData(ctx, 10); err != nil {
				log.Printf("main: не удалось создать демо-данные: %v", err)
			}
		})
	}

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	bookingHandler := httpHandlers.NewBookingHandler(bookingService)
	matchingHandler := httpHandlers.NewMatchingHandler(matchingService, cfg.DefaultRadiusKm)
	graduateHandler := httpHandlers.NewGraduateHandler(graduateService, guard, geoMatcher, cfg.DefaultRadiusKm)
	ratingHandler := httpHandlers.NewRatingHandler(ratingService)
	portfolioHandler := httpHandlers.NewPortfolioHandler(portfolioService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		bookingHandler,
		matchingHandler,
		graduateHandler,
		ratingHandler,
		portfolioHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
