package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/controllers"
	"github.com/khelarena/khelarena_backend/middleware"
)

// RegisterWalletRoutes sets up the wallet routes. Balance reads and
// top-ups need a player token; prize payouts need an admin token.
func RegisterWalletRoutes(e *echo.Echo, walletController *controllers.WalletController) {
	wallet := e.Group("/api/wallet")
	wallet.Use(middleware.JWTMiddleware())

	wallet.POST("/create-order", walletController.CreateOrder)
	wallet.POST("/add", walletController.AddMoney)
	wallet.GET("/balance/:phone", walletController.GetBalance)

	wallet.POST("/add-prize", walletController.AddPrize, middleware.RequireAdmin())
}
