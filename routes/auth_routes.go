package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/controllers"
	"github.com/khelarena/khelarena_backend/middleware"
)

// RegisterAuthRoutes sets up the OTP, profile and opt-in routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController, optInController *controllers.OptInController) {
	// Public authentication routes
	e.POST("/api/auth/send-otp", authController.SendOTP)
	e.POST("/api/auth/verify-otp", authController.VerifyOTP)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/update-profile", authController.UpdateProfile)
	e.POST("/api/auth/accept-terms", authController.AcceptTerms)
	e.POST("/api/auth/fcm-token", authController.RegisterFCMToken, middleware.JWTMiddleware())

	// WhatsApp opt-in: explicit registration plus the provider webhook
	e.POST("/api/optin", optInController.Register)
	e.POST("/api/whatsapp/webhook", optInController.Webhook)
}
