package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/controllers"
)

// RegisterAdminRoutes sets up the operations-account routes
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	e.POST("/api/admin/login", adminController.Login)
}
