package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/quickgeo/fullgeo-backend/environments"
	"github.com/quickgeo/fullgeo-backend/handlers"
	"github.com/quickgeo/fullgeo-backend/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	phoneHandler *handlers.PhoneHandler,
	locationHandler *handlers.LocationHandler,
	authHandler *handlers.AuthHandler,
	billingHandler *handlers.BillingHandler,
	chatHandler *handlers.ChatHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Payment processor webhook lives outside /api; it authenticates via
	// its own signature header.
	e.POST("/webhook", billingHandler.Webhook)

	api := e.Group("/api")

	// Public endpoints.
	api.POST("/login", authHandler.Login)
	api.POST("/checkout", billingHandler.Checkout)
	// The correlation id inside the body is the capability here.
	api.POST("/save-location", locationHandler.SaveLocation)

	// Shared-secret endpoints, one key per concern.
	api.POST("/phone-info", phoneHandler.PhoneInfo, middlewares.APIKeyAuth(cfg.Auth.PhoneInfoAPIKey))
	api.POST("/chat", chatHandler.Chat, middlewares.APIKeyAuth(cfg.Auth.ChatAPIKey))

	housekeeping := middlewares.APIKeyAuth(cfg.Auth.HousekeepingAPIKey)
	api.POST("/unsubscribe", authHandler.Unsubscribe, housekeeping)
	api.POST("/reset-psw", authHandler.ResetPassword, housekeeping)

	// Bearer-token endpoints.
	authed := middlewares.JWTAuth(cfg.Auth.JWTSecret)
	api.POST("/send-sms", locationHandler.SendSMS, authed)
	api.GET("/location-requests", locationHandler.History, authed)
}
