package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"getfit/internal/config"
	"getfit/internal/database"
	"getfit/internal/middleware"
	"getfit/internal/modules/auth"
	"getfit/internal/modules/booking"
	"getfit/internal/modules/catalog"
	"getfit/internal/modules/live"
	"getfit/internal/modules/review"
	jwtsvc "getfit/internal/pkg/jwt"
	"getfit/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	classRepo := repository.NewClassRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := live.NewHub()
	liveService := live.NewService(hub, scheduleRepo)
	liveHandler := live.NewHandler(liveService, hub, scheduleRepo)

	authService := auth.NewService(userRepo, tokenRepo, bookingRepo, j, auth.Config{
		MaxLoginAttempts:   cfg.MaxLoginAttempts,
		LockoutDuration:    cfg.LockoutDuration,
		RefreshTokenPepper: cfg.RefreshTokenPepper,
		RefreshTTL:         cfg.RefreshTTL,
	})
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(categoryRepo, classRepo, scheduleRepo, userRepo, analyticsRepo, liveService)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(bookingRepo, scheduleRepo, liveService, cfg.CancellationWindow)
	bookingHandler := booking.NewHandler(bookingService)

	reviewService := review.NewService(reviewRepo, bookingRepo, scheduleRepo, classRepo)
	reviewHandler := review.NewHandler(reviewService)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	liveHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)

			instructor := protected.Group("/instructor")
			instructor.Use(middleware.InstructorOnly())
			{
				catalogHandler.RegisterInstructorRoutes(instructor)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
				catalogHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
