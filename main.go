package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/handlers"
	"github.com/quickgeo/fullgeo-backend/internal/middlewares"
	"github.com/quickgeo/fullgeo-backend/internal/repository"
	"github.com/quickgeo/fullgeo-backend/internal/service"
	"github.com/quickgeo/fullgeo-backend/pkg/chat"
	"github.com/quickgeo/fullgeo-backend/pkg/database"
	"github.com/quickgeo/fullgeo-backend/pkg/logger"
	"github.com/quickgeo/fullgeo-backend/pkg/mailer"
	"github.com/quickgeo/fullgeo-backend/pkg/payments"
	"github.com/quickgeo/fullgeo-backend/pkg/phone"
	"github.com/quickgeo/fullgeo-backend/pkg/redis"
	"github.com/quickgeo/fullgeo-backend/pkg/sms"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
	"github.com/quickgeo/fullgeo-backend/routes"

	_ "github.com/quickgeo/fullgeo-backend/docs" // swagger docs
)

// @title Fullgeo API
// @version 1.0
// @description Phone-number geolocation backend: tracking SMS dispatch, GPS report capture, billing and account provisioning

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	// Load config
	cfg := environments.Load()

	// Hard-fail if required secrets are missing
	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("JWT_SECRET is required but not set")
	}
	if cfg.SMS.AccountSID == "" || cfg.SMS.AuthToken == "" {
		logger.Fatalf("SMS_ACCOUNT_SID and SMS_AUTH_TOKEN are required but not set")
	}
	if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
		logger.Fatalf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required but not set")
	}
	if cfg.Auth.PhoneInfoAPIKey == "" || cfg.Auth.HousekeepingAPIKey == "" || cfg.Auth.ChatAPIKey == "" {
		logger.Fatalf("PHONE_INFO_API_KEY, HOUSEKEEPING_API_KEY and CHAT_API_KEY are required but not set")
	}

	logger.Infof("Starting Fullgeo backend...")

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Init redis
	var redisClient *redis.Client
	redisClient, err = redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, caching disabled: %v", err)
		redisClient = nil
	}

	// External service clients
	smsClient := sms.NewClient(cfg.SMS)
	stripeClient := payments.NewClient(cfg.Stripe)
	chatClient := chat.NewClient(cfg.Chat)
	phoneLookup := phone.NewLookup()

	mailClient, err := mailer.NewMailer(cfg.Mail)
	if err != nil {
		logger.Fatalf("Failed to initialize mailer: %v", err)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	// Services
	accountService := service.NewAccountService(accountRepo, mailClient, cacheOrNil(redisClient), cfg.Auth)
	locationService := service.NewLocationService(locationRepo, accountRepo, smsClient, cacheOrNil(redisClient), phoneLookup, cfg.Tracking)
	billingService := service.NewBillingService(billingRepo, stripeClient, accountService, markCacheOrNil(redisClient), cfg.Stripe.CreditBundle)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	phoneHandler := handlers.NewPhoneHandler(phoneLookup)
	locationHandler := handlers.NewLocationHandler(locationService)
	authHandler := handlers.NewAuthHandler(accountService)
	billingHandler := handlers.NewBillingHandler(billingService, stripeClient)
	chatHandler := handlers.NewChatHandler(chatClient)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, phoneHandler, locationHandler, authHandler, billingHandler, chatHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}

// cacheOrNil keeps the typed-nil pitfall out of the service wiring: a nil
// *redis.Client must stay a nil interface inside the services.
func cacheOrNil(c *redis.Client) service.CreditCache {
	if c == nil {
		return nil
	}
	return c
}

func markCacheOrNil(c *redis.Client) service.PaymentMarkCache {
	if c == nil {
		return nil
	}
	return c
}
