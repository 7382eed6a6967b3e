package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/khelarena/khelarena_backend/config"
	"github.com/khelarena/khelarena_backend/controllers"
	"github.com/khelarena/khelarena_backend/middleware"
	"github.com/khelarena/khelarena_backend/repositories"
	"github.com/khelarena/khelarena_backend/routes"
	"github.com/khelarena/khelarena_backend/services"
	"github.com/khelarena/khelarena_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase (optional, push notifications only)
	config.InitFirebase()

	// Connect to Redis (optional, opt-in dedup cache only)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub for tournament lobbies
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	userRepo := repositories.NewUserRepository(client)
	walletRepo := repositories.NewWalletRepository(client)
	tournamentRepo := repositories.NewTournamentRepository(client)
	adminRepo := repositories.NewAdminRepository(client)

	// Seed the operations account from env if missing
	if err := adminRepo.SeedFromEnv(context.Background()); err != nil {
		log.Printf("Warning: admin seed failed: %v", err)
	}

	// Services
	gupshup := services.NewGupshupService()
	otpService := services.NewOtpService(
		services.NewOtpStore(),
		services.NewOtpRateLimiter(),
		gupshup,
		userRepo,
		redisClient,
	)
	walletService := services.NewWalletService(walletRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, walletService)
	razorpayService := services.NewRazorpayService()

	// Controllers
	authController := controllers.NewAuthController(client, otpService, userRepo)
	optInController := controllers.NewOptInController(otpService, userRepo)
	walletController := controllers.NewWalletController(walletService, razorpayService)
	tournamentController := controllers.NewTournamentController(client, tournamentService, wsHub)
	adminController := controllers.NewAdminController(adminRepo)

	// Announce room unlocks to tournament lobbies
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go tournamentController.WatchRoomUnlocks(watchCtx, time.Minute)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "KhelArena Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Register routes
	routes.RegisterAuthRoutes(e, authController, optInController)
	routes.RegisterWalletRoutes(e, walletController)
	routes.RegisterTournamentRoutes(e, tournamentController)
	routes.RegisterAdminRoutes(e, adminController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	otpService.Stop()
	config.CloseRedis()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
	log.Println("Shutdown complete")
}
